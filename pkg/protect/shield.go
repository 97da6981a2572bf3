package protect

// ShieldRule is the catch-all protection against suspicious request
// patterns. It is remote-only: local evaluation yields NOT_RUN.
type ShieldRule struct {
	mode Mode
}

// Kind returns RuleKindShield.
func (*ShieldRule) Kind() RuleKind { return RuleKindShield }

// Mode returns the rule's mode.
func (r *ShieldRule) Mode() Mode { return r.mode }

// Priority returns the fixed shield priority.
func (*ShieldRule) Priority() int { return priorityShield }

// ShieldOptions configures one shield rule.
type ShieldOptions struct {
	// Mode is LIVE or DRY_RUN; anything else is DRY_RUN.
	Mode Mode
}

// Shield builds one shield rule per option set. Zero options yield a
// single default rule in DRY_RUN mode.
func Shield(opts ...ShieldOptions) ([]Rule, error) {
	if len(opts) == 0 {
		opts = []ShieldOptions{{}}
	}

	var rules []Rule
	for _, opt := range opts {
		rules = append(rules, &ShieldRule{mode: normalizeMode(opt.Mode)})
	}
	return rules, nil
}

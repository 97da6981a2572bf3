package protect

import (
	"context"

	"mercator-hq/aegis/pkg/protect/analyze"
)

// SensitiveInfoRule scans the request body for sensitive entities. It
// is the only consumer of the adapter's lazy body.
type SensitiveInfoRule struct {
	mode Mode

	// Allow lists entity kinds to permit; all others are denied.
	Allow []analyze.EntityType

	// Deny lists entity kinds to reject; all others are allowed.
	Deny []analyze.EntityType

	// ContextWindowSize is the custom detector's token window.
	ContextWindowSize int

	// Detect is an optional caller-supplied detector.
	Detect analyze.DetectFunc
}

// Kind returns RuleKindSensitiveInfo.
func (*SensitiveInfoRule) Kind() RuleKind { return RuleKindSensitiveInfo }

// Mode returns the rule's mode.
func (r *SensitiveInfoRule) Mode() Mode { return r.mode }

// Priority returns the fixed sensitive-info priority.
func (*SensitiveInfoRule) Priority() int { return prioritySensitiveInfo }

// Validate requires an adapter that can produce a body.
func (r *SensitiveInfoRule) Validate(ctx context.Context, ectx *Context, details *RequestDetails) error {
	if ectx.GetBody == nil {
		return ErrNoRequestBody
	}
	return nil
}

// Protect pulls the body lazily and denies when any detected entity is
// rejected by the configuration. A missing body is an error, not a
// denial, per the fail-open policy.
func (r *SensitiveInfoRule) Protect(ctx context.Context, ectx *Context, details *RequestDetails) (*RuleResult, error) {
	body, ok, err := ectx.GetBody(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoRequestBody
	}

	result, err := ectx.analyzer.DetectSensitiveInfo(ctx, body, analyze.SensitiveInfoConfig{
		Allow:             r.Allow,
		Deny:              r.Deny,
		ContextWindowSize: r.ContextWindowSize,
		Detect:            r.Detect,
	})
	if err != nil {
		return nil, err
	}

	reason := &SensitiveInfoReason{Allowed: result.Allowed, Denied: result.Denied}
	if len(result.Denied) > 0 {
		return &RuleResult{
			State:      StateRun,
			Conclusion: ConclusionDeny,
			Reason:     reason,
		}, nil
	}

	return &RuleResult{
		State:      StateRun,
		Conclusion: ConclusionAllow,
		Reason:     reason,
	}, nil
}

// DetectSensitiveInfoOptions configures one sensitive-info rule. At
// most one of Allow and Deny may be set.
type DetectSensitiveInfoOptions struct {
	// Mode is LIVE or DRY_RUN; anything else is DRY_RUN.
	Mode Mode

	// Allow lists entity kinds to permit.
	Allow []analyze.EntityType

	// Deny lists entity kinds to reject.
	Deny []analyze.EntityType

	// ContextWindowSize is the custom detector's token window.
	// Defaults to 1.
	ContextWindowSize int

	// Detect is an optional caller-supplied detector.
	Detect analyze.DetectFunc
}

// DetectSensitiveInfo builds one sensitive-info rule per option set.
// Zero options yield a single default rule that denies every detected
// entity.
func DetectSensitiveInfo(opts ...DetectSensitiveInfoOptions) ([]Rule, error) {
	if len(opts) == 0 {
		opts = []DetectSensitiveInfoOptions{{}}
	}

	var rules []Rule
	for _, opt := range opts {
		if len(opt.Allow) > 0 && len(opt.Deny) > 0 {
			return nil, &ConstructionError{Rule: "sensitive-info", Message: "allow and deny are mutually exclusive"}
		}
		window := opt.ContextWindowSize
		if window < 1 {
			window = 1
		}
		rules = append(rules, &SensitiveInfoRule{
			mode:              normalizeMode(opt.Mode),
			Allow:             opt.Allow,
			Deny:              opt.Deny,
			ContextWindowSize: window,
			Detect:            opt.Detect,
		})
	}
	return rules, nil
}

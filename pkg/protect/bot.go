package protect

import (
	"context"
	"fmt"

	"mercator-hq/aegis/pkg/protect/analyze"
)

// botDenyTTL is how long a bot denial stays in the block cache.
const botDenyTTL = 60

// BotRule detects automated clients from the user agent. It is a local
// rule: detection runs in-process through the analyzer.
type BotRule struct {
	mode Mode

	// Allow lists permitted bot identifiers; all others are denied.
	Allow []string

	// Deny lists denied bot identifiers; all others are allowed.
	Deny []string
}

// Kind returns RuleKindBot.
func (*BotRule) Kind() RuleKind { return RuleKindBot }

// Mode returns the rule's mode.
func (r *BotRule) Mode() Mode { return r.mode }

// Priority returns the fixed bot-detection priority.
func (*BotRule) Priority() int { return priorityBot }

// Validate requires request headers with a user agent to classify.
func (r *BotRule) Validate(ctx context.Context, ectx *Context, details *RequestDetails) error {
	if details.Headers == nil || !details.Headers.Has("user-agent") {
		return fmt.Errorf("request has no user-agent header")
	}
	return nil
}

// Protect classifies the client and denies when any detected bot
// identifier lands on the wrong side of the allow/deny list.
func (r *BotRule) Protect(ctx context.Context, ectx *Context, details *RequestDetails) (*RuleResult, error) {
	result, err := ectx.analyzer.DetectBot(ctx, details.projection(), analyze.BotConfig{
		Allow: r.Allow,
		Deny:  r.Deny,
	})
	if err != nil {
		return nil, err
	}

	reason := &BotReason{Allowed: result.Allowed, Denied: result.Denied}
	if len(result.Denied) > 0 {
		return &RuleResult{
			State:      StateRun,
			Conclusion: ConclusionDeny,
			TTL:        botDenyTTL,
			Reason:     reason,
		}, nil
	}

	return &RuleResult{
		State:      StateRun,
		Conclusion: ConclusionAllow,
		Reason:     reason,
	}, nil
}

// DetectBotOptions configures one bot-detection rule. At most one of
// Allow and Deny may be set.
type DetectBotOptions struct {
	// Mode is LIVE or DRY_RUN; anything else is DRY_RUN.
	Mode Mode

	// Allow lists well-known bot identifiers to permit.
	Allow []string

	// Deny lists well-known bot identifiers to reject.
	Deny []string
}

// DetectBot builds one bot-detection rule per option set. Zero options
// yield a single default rule that denies every detected bot.
func DetectBot(opts ...DetectBotOptions) ([]Rule, error) {
	if len(opts) == 0 {
		opts = []DetectBotOptions{{}}
	}

	var rules []Rule
	for _, opt := range opts {
		if len(opt.Allow) > 0 && len(opt.Deny) > 0 {
			return nil, &ConstructionError{Rule: "bot", Message: "allow and deny are mutually exclusive"}
		}
		if err := checkBotEntities("allow", opt.Allow); err != nil {
			return nil, err
		}
		if err := checkBotEntities("deny", opt.Deny); err != nil {
			return nil, err
		}
		rules = append(rules, &BotRule{
			mode:  normalizeMode(opt.Mode),
			Allow: opt.Allow,
			Deny:  opt.Deny,
		})
	}
	return rules, nil
}

// checkBotEntities rejects empty and unknown identifiers, naming the
// list being checked.
func checkBotEntities(list string, ids []string) error {
	for _, id := range ids {
		if id == "" {
			return &ConstructionError{Rule: "bot", Message: fmt.Sprintf("all values in %s must be non-empty", list)}
		}
		if !analyze.KnownBot(id) {
			return &ConstructionError{Rule: "bot", Message: fmt.Sprintf("%s contains unknown bot identifier %q", list, id)}
		}
	}
	return nil
}

package protect

import (
	"context"
	"fmt"

	"mercator-hq/aegis/pkg/protect/analyze"
)

// EmailRule validates the email address supplied with the request.
type EmailRule struct {
	mode Mode

	// Block lists the disqualification kinds to reject.
	Block []analyze.EmailType

	// RequireTopLevelDomain rejects bare hostnames.
	RequireTopLevelDomain bool

	// AllowDomainLiteral accepts bracketed address literals.
	AllowDomainLiteral bool
}

// Kind returns RuleKindEmail.
func (*EmailRule) Kind() RuleKind { return RuleKindEmail }

// Mode returns the rule's mode.
func (r *EmailRule) Mode() Mode { return r.mode }

// Priority returns the fixed email-validation priority.
func (*EmailRule) Priority() int { return priorityEmail }

// Validate requires an email on the request.
func (r *EmailRule) Validate(ctx context.Context, ectx *Context, details *RequestDetails) error {
	if details.Email == "" {
		return fmt.Errorf("request has no email")
	}
	return nil
}

// Protect validates the address and denies when it is invalid or any
// blocked disqualification kind applies.
func (r *EmailRule) Protect(ctx context.Context, ectx *Context, details *RequestDetails) (*RuleResult, error) {
	result, err := ectx.analyzer.IsValidEmail(ctx, details.Email, analyze.EmailOptions{
		Block:                 r.Block,
		RequireTopLevelDomain: r.RequireTopLevelDomain,
		AllowDomainLiteral:    r.AllowDomainLiteral,
	})
	if err != nil {
		return nil, err
	}

	if result.Validity == analyze.ValidityInvalid || len(result.Blocked) > 0 {
		blocked := result.Blocked
		if len(blocked) == 0 {
			blocked = []analyze.EmailType{analyze.EmailTypeInvalid}
		}
		return &RuleResult{
			State:      StateRun,
			Conclusion: ConclusionDeny,
			Reason:     &EmailReason{EmailTypes: blocked},
		}, nil
	}

	return &RuleResult{
		State:      StateRun,
		Conclusion: ConclusionAllow,
		Reason:     &EmailReason{},
	}, nil
}

// ValidateEmailOptions configures one email-validation rule.
type ValidateEmailOptions struct {
	// Mode is LIVE or DRY_RUN; anything else is DRY_RUN.
	Mode Mode

	// Block lists the disqualification kinds to reject.
	Block []analyze.EmailType

	// RequireTopLevelDomain rejects bare hostnames. Defaults to true;
	// set to a false pointer value to accept them.
	RequireTopLevelDomain *bool

	// AllowDomainLiteral accepts bracketed literals like
	// "user@[127.0.0.1]". Defaults to false.
	AllowDomainLiteral bool
}

// ValidateEmail builds one email-validation rule per option set. Zero
// options yield a single default rule that rejects invalid addresses.
func ValidateEmail(opts ...ValidateEmailOptions) ([]Rule, error) {
	if len(opts) == 0 {
		opts = []ValidateEmailOptions{{}}
	}

	var rules []Rule
	for _, opt := range opts {
		requireTLD := true
		if opt.RequireTopLevelDomain != nil {
			requireTLD = *opt.RequireTopLevelDomain
		}
		rules = append(rules, &EmailRule{
			mode:                  normalizeMode(opt.Mode),
			Block:                 opt.Block,
			RequireTopLevelDomain: requireTLD,
			AllowDomainLiteral:    opt.AllowDomainLiteral,
		})
	}
	return rules, nil
}

package protect

import (
	"context"
	"sort"
)

// RuleKind discriminates the rule variants.
type RuleKind string

const (
	RuleKindRateLimit     RuleKind = "RATE_LIMIT"
	RuleKindBot           RuleKind = "BOT"
	RuleKindEmail         RuleKind = "EMAIL"
	RuleKindSensitiveInfo RuleKind = "SENSITIVE_INFO"
	RuleKindShield        RuleKind = "SHIELD"
)

// Mode controls whether a rule can deny requests.
type Mode string

const (
	// ModeLive rules can cause a request to be denied.
	ModeLive Mode = "LIVE"

	// ModeDryRun rules only log what they would have done.
	ModeDryRun Mode = "DRY_RUN"
)

// normalizeMode maps anything but the exact LIVE literal to DRY_RUN.
// This mirrors the original behavior where typos silently disarm a
// rule; unrecognized values are not logged.
func normalizeMode(m Mode) Mode {
	if m == ModeLive {
		return ModeLive
	}
	return ModeDryRun
}

// Fixed rule priorities; lower runs first.
const (
	prioritySensitiveInfo = 1
	priorityShield        = 2
	priorityRateLimit     = 3
	priorityBot           = 4
	priorityEmail         = 5
)

// Rule is one piece of protection policy. All variants carry a kind,
// an evaluation priority, and a mode; variants that additionally
// implement LocalRule are evaluated in-process, the rest only by the
// remote service.
type Rule interface {
	Kind() RuleKind
	Mode() Mode
	Priority() int
}

// LocalRule is the capability interface for rules with an in-process
// validate/protect pair. Rate-limit and shield rules deliberately do
// not implement it.
type LocalRule interface {
	Rule

	// Validate checks that the request carries the inputs the rule
	// needs. An error converts the rule's result to ERROR and moves
	// evaluation to the next rule.
	Validate(ctx context.Context, ectx *Context, details *RequestDetails) error

	// Protect evaluates the rule. The returned result has State, TTL,
	// Conclusion, and Reason populated; the engine assigns RuleID.
	Protect(ctx context.Context, ectx *Context, details *RequestDetails) (*RuleResult, error)
}

// sortRules orders rules by non-decreasing priority. The sort is
// stable, so ties keep their declaration order and permutations of the
// same rule set evaluate identically.
func sortRules(rules []Rule) []Rule {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return sorted
}

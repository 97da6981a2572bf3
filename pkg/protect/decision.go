package protect

import "github.com/google/uuid"

// Conclusion is the verdict of a rule or of the engine as a whole.
type Conclusion string

const (
	// ConclusionAllow lets the request proceed.
	ConclusionAllow Conclusion = "ALLOW"

	// ConclusionDeny blocks the request.
	ConclusionDeny Conclusion = "DENY"

	// ConclusionChallenge asks the caller to challenge the client
	// (e.g. with a CAPTCHA) before proceeding.
	ConclusionChallenge Conclusion = "CHALLENGE"

	// ConclusionError indicates evaluation failed. Callers should treat
	// this as allow unless they implement their own policy (fail-open).
	ConclusionError Conclusion = "ERROR"
)

// RuleState describes how far a rule got during evaluation.
type RuleState string

const (
	// StateNotRun means the rule was not evaluated locally.
	StateNotRun RuleState = "NOT_RUN"

	// StateRun means the rule was evaluated locally.
	StateRun RuleState = "RUN"

	// StateCached means the conclusion was served from the block cache.
	StateCached RuleState = "CACHED"
)

// RuleResult is the outcome of a single rule for a single Protect call.
type RuleResult struct {
	// RuleID identifies the rule instance, assigned by the engine.
	RuleID string

	// TTL is how long the conclusion may be cached, in seconds.
	TTL uint32

	// State describes whether and how the rule ran.
	State RuleState

	// Conclusion is the rule's verdict.
	Conclusion Conclusion

	// Reason carries the structured evidence for the conclusion.
	Reason Reason
}

// IsDenied reports whether the rule concluded DENY.
func (r *RuleResult) IsDenied() bool {
	return r.Conclusion == ConclusionDeny
}

// Decision is the engine's final verdict for a request.
type Decision struct {
	// ID uniquely identifies this decision.
	ID string

	// Conclusion is the final verdict.
	Conclusion Conclusion

	// TTL is how long the decision may be cached, in seconds.
	TTL uint32

	// Reason carries the structured evidence for the conclusion.
	Reason Reason

	// Results holds one entry per configured rule, in evaluation order.
	// It is empty when Protect stops before evaluating rules: too many
	// rules configured, or a failed fingerprint.
	Results []*RuleResult
}

// newDecision builds a decision with a fresh identifier.
func newDecision(conclusion Conclusion, ttl uint32, reason Reason, results []*RuleResult) *Decision {
	return &Decision{
		ID:         uuid.NewString(),
		Conclusion: conclusion,
		TTL:        ttl,
		Reason:     reason,
		Results:    results,
	}
}

// IsAllowed reports whether the request should proceed. ERROR decisions
// are not allowed here; callers choosing fail-open should combine this
// with IsErrored.
func (d *Decision) IsAllowed() bool {
	return d.Conclusion == ConclusionAllow
}

// IsDenied reports whether the request was denied.
func (d *Decision) IsDenied() bool {
	return d.Conclusion == ConclusionDeny
}

// IsChallenged reports whether the client should be challenged.
func (d *Decision) IsChallenged() bool {
	return d.Conclusion == ConclusionChallenge
}

// IsErrored reports whether evaluation failed.
func (d *Decision) IsErrored() bool {
	return d.Conclusion == ConclusionError
}

// FromCache reports whether the conclusion was served from the block
// cache rather than evaluated.
func (d *Decision) FromCache() bool {
	for _, result := range d.Results {
		if result.State == StateCached {
			return true
		}
	}
	return false
}

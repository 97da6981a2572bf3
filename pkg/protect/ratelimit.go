package protect

import (
	"mercator-hq/aegis/pkg/protect/duration"
)

// RateLimitAlgorithm selects the rate-limiting algorithm the remote
// service applies for a rate-limit rule.
type RateLimitAlgorithm string

const (
	AlgorithmTokenBucket   RateLimitAlgorithm = "TOKEN_BUCKET"
	AlgorithmFixedWindow   RateLimitAlgorithm = "FIXED_WINDOW"
	AlgorithmSlidingWindow RateLimitAlgorithm = "SLIDING_WINDOW"
)

// RateLimitRule is a remote-only rule: local evaluation yields NOT_RUN
// and the remote service enforces the limit keyed by the rule's
// characteristics (or the engine's, injected per request when unset).
type RateLimitRule struct {
	mode      Mode
	Algorithm RateLimitAlgorithm

	// Match optionally restricts the rule to a path.
	Match string

	// Characteristics key the limit. Empty means "use the engine's".
	Characteristics []string

	// Token bucket parameters.
	RefillRate int
	Capacity   int

	// Interval is the refill interval (token bucket) or the rolling
	// window (sliding window), in seconds.
	Interval uint32

	// Fixed window parameters.
	Max    int
	Window uint32
}

// Kind returns RuleKindRateLimit.
func (*RateLimitRule) Kind() RuleKind { return RuleKindRateLimit }

// Mode returns the rule's mode.
func (r *RateLimitRule) Mode() Mode { return r.mode }

// Priority returns the fixed rate-limit priority.
func (*RateLimitRule) Priority() int { return priorityRateLimit }

// withCharacteristics returns a copy using the given characteristics.
// The original rule is shared across requests and stays untouched.
func (r *RateLimitRule) withCharacteristics(characteristics []string) *RateLimitRule {
	clone := *r
	clone.Characteristics = characteristics
	return &clone
}

// TokenBucketOptions configures one token-bucket rate-limit rule.
type TokenBucketOptions struct {
	// Mode is LIVE or DRY_RUN; anything else is DRY_RUN.
	Mode Mode

	// Match optionally restricts the rule to a path.
	Match string

	// Characteristics key the limit; defaults to the engine's.
	Characteristics []string

	// RefillRate is how many tokens are added per interval.
	RefillRate int

	// Interval is the refill interval: an integer number of seconds or
	// a duration string like "1h30m".
	Interval any

	// Capacity is the bucket size (maximum burst).
	Capacity int
}

// TokenBucket builds one token-bucket rate-limit rule per option set.
// Zero options yield no rules.
func TokenBucket(opts ...TokenBucketOptions) ([]Rule, error) {
	var rules []Rule
	for _, opt := range opts {
		interval, err := duration.Parse(opt.Interval)
		if err != nil {
			return nil, &ConstructionError{Rule: "rate-limit", Message: err.Error()}
		}
		rules = append(rules, &RateLimitRule{
			mode:            normalizeMode(opt.Mode),
			Algorithm:       AlgorithmTokenBucket,
			Match:           opt.Match,
			Characteristics: opt.Characteristics,
			RefillRate:      opt.RefillRate,
			Interval:        interval,
			Capacity:        opt.Capacity,
		})
	}
	return rules, nil
}

// FixedWindowOptions configures one fixed-window rate-limit rule.
type FixedWindowOptions struct {
	Mode            Mode
	Match           string
	Characteristics []string

	// Max is the number of requests allowed per window.
	Max int

	// Window is the window length: integer seconds or a duration string.
	Window any
}

// FixedWindow builds one fixed-window rate-limit rule per option set.
// Zero options yield no rules.
func FixedWindow(opts ...FixedWindowOptions) ([]Rule, error) {
	var rules []Rule
	for _, opt := range opts {
		window, err := duration.Parse(opt.Window)
		if err != nil {
			return nil, &ConstructionError{Rule: "rate-limit", Message: err.Error()}
		}
		rules = append(rules, &RateLimitRule{
			mode:            normalizeMode(opt.Mode),
			Algorithm:       AlgorithmFixedWindow,
			Match:           opt.Match,
			Characteristics: opt.Characteristics,
			Max:             opt.Max,
			Window:          window,
		})
	}
	return rules, nil
}

// SlidingWindowOptions configures one sliding-window rate-limit rule.
type SlidingWindowOptions struct {
	Mode            Mode
	Match           string
	Characteristics []string

	// Max is the number of requests allowed per interval.
	Max int

	// Interval is the rolling window: integer seconds or a duration string.
	Interval any
}

// SlidingWindow builds one sliding-window rate-limit rule per option
// set. Zero options yield no rules.
func SlidingWindow(opts ...SlidingWindowOptions) ([]Rule, error) {
	var rules []Rule
	for _, opt := range opts {
		interval, err := duration.Parse(opt.Interval)
		if err != nil {
			return nil, &ConstructionError{Rule: "rate-limit", Message: err.Error()}
		}
		rules = append(rules, &RateLimitRule{
			mode:            normalizeMode(opt.Mode),
			Algorithm:       AlgorithmSlidingWindow,
			Match:           opt.Match,
			Characteristics: opt.Characteristics,
			Max:             opt.Max,
			Interval:        interval,
		})
	}
	return rules, nil
}

package protect

// SignupOptions groups the sub-options of the signup composite.
type SignupOptions struct {
	// RateLimit configures the sliding-window rate limit. When nil, no
	// rate-limit rule is emitted.
	RateLimit *SlidingWindowOptions

	// Bots configures bot detection. When nil, the default bot rule is
	// emitted.
	Bots *DetectBotOptions

	// Email configures email validation. When nil, the default email
	// rule is emitted.
	Email *ValidateEmailOptions
}

// ProtectSignup is the signup form composite: a sliding-window rate
// limit, bot detection, and email validation, concatenated in that
// order.
//
// With zero options the product is asymmetric on purpose: the rate
// limit needs parameters and is omitted, while bot detection and email
// validation fall back to their defaults.
func ProtectSignup(opts ...SignupOptions) ([]Rule, error) {
	var rateLimits []SlidingWindowOptions
	var bots []DetectBotOptions
	var emails []ValidateEmailOptions

	for _, opt := range opts {
		if opt.RateLimit != nil {
			rateLimits = append(rateLimits, *opt.RateLimit)
		}
		if opt.Bots != nil {
			bots = append(bots, *opt.Bots)
		}
		if opt.Email != nil {
			emails = append(emails, *opt.Email)
		}
	}

	rateLimitRules, err := SlidingWindow(rateLimits...)
	if err != nil {
		return nil, err
	}
	botRules, err := DetectBot(bots...)
	if err != nil {
		return nil, err
	}
	emailRules, err := ValidateEmail(emails...)
	if err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(rateLimitRules)+len(botRules)+len(emailRules))
	rules = append(rules, rateLimitRules...)
	rules = append(rules, botRules...)
	rules = append(rules, emailRules...)
	return rules, nil
}

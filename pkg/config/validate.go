package config

import "fmt"

// ruleTypes lists the accepted RuleConfig type values.
var ruleTypes = map[string]bool{
	"TOKEN_BUCKET":   true,
	"FIXED_WINDOW":   true,
	"SLIDING_WINDOW": true,
	"BOT":            true,
	"EMAIL":          true,
	"SENSITIVE_INFO": true,
	"SHIELD":         true,
}

// Validate checks the configuration for structural errors. Rule
// parameter errors (bad durations, unknown bot identifiers) surface
// later from the rule constructors.
func (c *Config) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("key is required")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format: %q", c.Logging.Format)
	}

	for i, rule := range c.Rules {
		if !ruleTypes[rule.Type] {
			return fmt.Errorf("rule %d: unknown type %q", i, rule.Type)
		}
		if len(rule.Allow) > 0 && len(rule.Deny) > 0 {
			return fmt.Errorf("rule %d: allow and deny are mutually exclusive", i)
		}
		if len(rule.AllowEntities) > 0 && len(rule.DenyEntities) > 0 {
			return fmt.Errorf("rule %d: allow_entities and deny_entities are mutually exclusive", i)
		}
	}

	return nil
}

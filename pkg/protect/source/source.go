package source

import (
	"fmt"

	"mercator-hq/aegis/pkg/config"
	"mercator-hq/aegis/pkg/protect"
	"mercator-hq/aegis/pkg/protect/analyze"
)

// BuildRules translates declarative rule configurations into rules via
// the real constructors, so file-defined and code-defined rules share
// validation and defaults.
func BuildRules(cfgs []config.RuleConfig) ([]protect.Rule, error) {
	var rules []protect.Rule

	for i, cfg := range cfgs {
		built, err := buildRule(cfg)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, built...)
	}

	return rules, nil
}

func buildRule(cfg config.RuleConfig) ([]protect.Rule, error) {
	mode := protect.Mode(cfg.Mode)

	switch cfg.Type {
	case "TOKEN_BUCKET":
		return protect.TokenBucket(protect.TokenBucketOptions{
			Mode:            mode,
			Match:           cfg.Match,
			Characteristics: cfg.Characteristics,
			RefillRate:      cfg.RefillRate,
			Interval:        cfg.Interval,
			Capacity:        cfg.Capacity,
		})

	case "FIXED_WINDOW":
		return protect.FixedWindow(protect.FixedWindowOptions{
			Mode:            mode,
			Match:           cfg.Match,
			Characteristics: cfg.Characteristics,
			Max:             cfg.Max,
			Window:          cfg.Window,
		})

	case "SLIDING_WINDOW":
		return protect.SlidingWindow(protect.SlidingWindowOptions{
			Mode:            mode,
			Match:           cfg.Match,
			Characteristics: cfg.Characteristics,
			Max:             cfg.Max,
			Interval:        cfg.Interval,
		})

	case "BOT":
		return protect.DetectBot(protect.DetectBotOptions{
			Mode:  mode,
			Allow: cfg.Allow,
			Deny:  cfg.Deny,
		})

	case "EMAIL":
		block := make([]analyze.EmailType, 0, len(cfg.Block))
		for _, kind := range cfg.Block {
			block = append(block, analyze.EmailType(kind))
		}
		return protect.ValidateEmail(protect.ValidateEmailOptions{
			Mode:                  mode,
			Block:                 block,
			RequireTopLevelDomain: cfg.RequireTopLevelDomain,
			AllowDomainLiteral:    cfg.AllowDomainLiteral,
		})

	case "SENSITIVE_INFO":
		return protect.DetectSensitiveInfo(protect.DetectSensitiveInfoOptions{
			Mode:              mode,
			Allow:             toEntities(cfg.AllowEntities),
			Deny:              toEntities(cfg.DenyEntities),
			ContextWindowSize: cfg.ContextWindowSize,
		})

	case "SHIELD":
		return protect.Shield(protect.ShieldOptions{Mode: mode})

	default:
		return nil, fmt.Errorf("unknown rule type %q", cfg.Type)
	}
}

func toEntities(kinds []string) []analyze.EntityType {
	if len(kinds) == 0 {
		return nil
	}
	entities := make([]analyze.EntityType, 0, len(kinds))
	for _, kind := range kinds {
		entities = append(entities, analyze.EntityType(kind))
	}
	return entities
}

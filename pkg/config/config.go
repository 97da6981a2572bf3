package config

import "time"

// Config is the root configuration for the Aegis SDK. Adapters load it
// once at startup and inject the values into the engine; the core
// itself reads no configuration and no environment variables.
type Config struct {
	// Key is the site identifier used for remote authentication and
	// fingerprinting.
	Key string `yaml:"key"`

	// Characteristics key the client fingerprint and the default
	// rate-limit dimensions. Default: ["ip.src"].
	Characteristics []string `yaml:"characteristics"`

	// Client configures the remote decision transport.
	Client ClientConfig `yaml:"client"`

	// Logging configures the SDK logger.
	Logging LoggingConfig `yaml:"logging"`

	// Rules declares the configured rule set.
	Rules []RuleConfig `yaml:"rules"`
}

// ClientConfig configures the remote decision client.
type ClientConfig struct {
	// BaseURL is the decision service endpoint.
	// Default: "https://decide.aegis.dev"
	BaseURL string `yaml:"base_url"`

	// Timeout bounds every remote call. The engine fails open when it
	// trips. Default: 1s.
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig configures the SDK logger.
type LoggingConfig struct {
	// Level is the minimum log level. Default: "info".
	Level string `yaml:"level"`

	// Format is "json" or "text". Default: "text".
	Format string `yaml:"format"`

	// RedactPII scrubs keys and emails from log output. Default: true.
	RedactPII *bool `yaml:"redact_pii"`
}

// RuleConfig declares one rule. Type selects the variant; the variant
// decides which of the remaining fields apply.
type RuleConfig struct {
	// Type is one of TOKEN_BUCKET, FIXED_WINDOW, SLIDING_WINDOW, BOT,
	// EMAIL, SENSITIVE_INFO, SHIELD.
	Type string `yaml:"type"`

	// Mode is LIVE or DRY_RUN; anything else is DRY_RUN.
	Mode string `yaml:"mode"`

	// Rate limit fields. Interval and Window accept integers (seconds)
	// or duration strings like "1h30m".
	Match           string   `yaml:"match"`
	Characteristics []string `yaml:"rule_characteristics"`
	RefillRate      int      `yaml:"refill_rate"`
	Interval        string   `yaml:"interval"`
	Capacity        int      `yaml:"capacity"`
	Max             int      `yaml:"max"`
	Window          string   `yaml:"window"`

	// Bot fields.
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`

	// Email fields.
	Block                 []string `yaml:"block"`
	RequireTopLevelDomain *bool    `yaml:"require_top_level_domain"`
	AllowDomainLiteral    bool     `yaml:"allow_domain_literal"`

	// Sensitive info fields.
	AllowEntities     []string `yaml:"allow_entities"`
	DenyEntities      []string `yaml:"deny_entities"`
	ContextWindowSize int      `yaml:"context_window_size"`
}

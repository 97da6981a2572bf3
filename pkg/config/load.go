package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes, defaults, and validates YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills unset fields with their documented defaults.
func (c *Config) applyDefaults() {
	if len(c.Characteristics) == 0 {
		c.Characteristics = []string{"ip.src"}
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "https://decide.aegis.dev"
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.RedactPII == nil {
		redact := true
		c.Logging.RedactPII = &redact
	}
}

// Package config loads and validates the YAML configuration adapters
// use to wire the Aegis SDK: site key, characteristics, remote client
// settings, logging, and the declarative rule set.
package config

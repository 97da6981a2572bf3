package logging

import "regexp"

// Redactor scrubs PII from log messages. The SDK sits in the request
// path and regularly handles emails and site keys; redaction keeps
// them out of log aggregation.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern pairs a compiled regex with its replacement.
type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a redactor with the built-in patterns.
func NewRedactor() *Redactor {
	compile := func(pattern, replacement string) *redactPattern {
		return &redactPattern{
			regex:       regexp.MustCompile(pattern),
			replacement: replacement,
		}
	}

	return &Redactor{
		patterns: []*redactPattern{
			// Site and API keys.
			compile(`(ajkey_[a-zA-Z0-9]+|sk-[a-zA-Z0-9]+|api[-_]?key[-_:]\s*[a-zA-Z0-9]+)`, "***"),

			// Bearer tokens.
			compile(`(?i)(bearer\s+)[a-zA-Z0-9._-]+`, "${1}***"),

			// Email addresses: keep the domain, drop the local part.
			compile(`[a-zA-Z0-9._%+-]+@([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`, "***@${1}"),
		},
	}
}

// Redact applies every pattern to msg.
func (r *Redactor) Redact(msg string) string {
	for _, p := range r.patterns {
		msg = p.regex.ReplaceAllString(msg, p.replacement)
	}
	return msg
}

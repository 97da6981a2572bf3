// Package logging provides the SDK's structured logger: a printf-style
// facade over log/slog with optional PII redaction and Time/TimeEnd
// span instrumentation, satisfying the protect package's Logger and
// TimingLogger contracts.
package logging

package protect

import (
	"context"

	"mercator-hq/aegis/pkg/protect/analyze"
)

// Logger is the sink for engine diagnostics. Methods are printf-style.
// Implementations that also satisfy TimingLogger get span instrumentation
// around rule evaluation; plain Loggers work unchanged.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TimingLogger is the optional span-instrumentation extension of Logger.
type TimingLogger interface {
	Logger
	Time(label string)
	TimeEnd(label string)
}

// BodyFunc lazily yields the request body as text. The second return is
// false when no body is available; adapters that can only read the body
// once should memoize internally.
type BodyFunc func(ctx context.Context) (string, bool, error)

// Context is the immutable per-request evaluation context passed to
// every rule. The engine builds it during Protect; rules must not
// mutate it.
type Context struct {
	// Key is the configured site identifier.
	Key string

	// Fingerprint is the stable client fingerprint for this request.
	Fingerprint string

	// Characteristics is the engine-level characteristic list.
	Characteristics []string

	// Runtime tags the executing platform.
	Runtime string

	// Log is the configured logger.
	Log Logger

	// GetBody lazily reads the request body. May be nil when the
	// adapter cannot supply one.
	GetBody BodyFunc

	// analyzer provides the local analysis primitives to rules.
	analyzer analyze.Analyzer
}

// time starts a span if the logger supports timing.
func (c *Context) time(label string) {
	if tl, ok := c.Log.(TimingLogger); ok {
		tl.Time(label)
	}
}

// timeEnd closes a span if the logger supports timing.
func (c *Context) timeEnd(label string) {
	if tl, ok := c.Log.(TimingLogger); ok {
		tl.TimeEnd(label)
	}
}

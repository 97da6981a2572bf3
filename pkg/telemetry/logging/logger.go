package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Format selects the log output format.
type Format string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = "json"

	// FormatText outputs logs in plain text format.
	FormatText Format = "text"
)

// Config contains configuration for the Logger.
type Config struct {
	// Level is the minimum level: "debug", "info", "warn", or "error".
	// Default: "info".
	Level string

	// Format is "json" or "text". Default: "text".
	Format Format

	// RedactPII scrubs API keys, emails, and bearer tokens from
	// messages before they are written. Default: false.
	RedactPII bool

	// Writer receives the output. Default: os.Stderr.
	Writer io.Writer
}

// Logger is a printf-style logger backed by slog. It satisfies the
// protect package's Logger and TimingLogger contracts: Debug/Warn/Error
// plus Time/TimeEnd span instrumentation.
type Logger struct {
	slog     *slog.Logger
	redactor *Redactor

	// timers tracks open Time spans by label.
	timers sync.Map
}

// New creates a logger from config.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(writer, opts)
	case FormatText, "":
		handler = slog.NewTextHandler(writer, opts)
	default:
		return nil, fmt.Errorf("unknown log format: %q", cfg.Format)
	}

	logger := &Logger{slog: slog.New(handler)}
	if cfg.RedactPII {
		logger.redactor = NewRedactor()
	}
	return logger, nil
}

// Default returns a text logger at info level writing to stderr.
func Default() *Logger {
	logger, _ := New(Config{})
	return logger
}

// Debug logs a formatted message at debug level.
func (l *Logger) Debug(format string, args ...any) {
	l.slog.Debug(l.sprintf(format, args...))
}

// Warn logs a formatted message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.slog.Warn(l.sprintf(format, args...))
}

// Error logs a formatted message at error level.
func (l *Logger) Error(format string, args ...any) {
	l.slog.Error(l.sprintf(format, args...))
}

// Time opens a span under label. A second Time with the same label
// restarts the span.
func (l *Logger) Time(label string) {
	l.timers.Store(label, time.Now())
}

// TimeEnd closes the span under label and logs its duration at debug
// level. Unmatched labels are ignored.
func (l *Logger) TimeEnd(label string) {
	value, ok := l.timers.LoadAndDelete(label)
	if !ok {
		return
	}
	start := value.(time.Time)
	l.slog.Debug(fmt.Sprintf("%s took %s", label, time.Since(start)))
}

// sprintf formats and, when enabled, redacts a message.
func (l *Logger) sprintf(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if l.redactor != nil {
		msg = l.redactor.Redact(msg)
	}
	return msg
}

func parseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", level)
	}
}

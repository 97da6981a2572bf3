package duration

import (
	"fmt"
	"strings"
)

// maxSeconds is the largest representable duration (2^31-1 seconds).
const maxSeconds = int64(1<<31 - 1)

// InvalidDurationError indicates a duration value that could not be parsed.
type InvalidDurationError struct {
	Value   any
	Message string
}

// Error returns the error message.
func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %v: %s", e.Value, e.Message)
}

// unitMillis maps a normalized unit name to its length in milliseconds.
// Milliseconds are carried so that "ms" segments can be rounded once at
// the end instead of per segment.
var unitMillis = map[string]int64{
	"ms":   1,
	"s":    1000,
	"sec":  1000,
	"m":    60 * 1000,
	"min":  60 * 1000,
	"h":    60 * 60 * 1000,
	"hour": 60 * 60 * 1000,
	"d":    24 * 60 * 60 * 1000,
	"day":  24 * 60 * 60 * 1000,
}

// Parse converts a duration value to whole seconds.
//
// Two input forms are accepted:
//
//   - A non-negative Go integer, interpreted directly as seconds.
//   - A case-insensitive string of one or more "<number><unit>" segments
//     where unit is one of ms, s, m, h, d (with aliases sec, min, hour,
//     day). Segments are additive and may appear in any order, and
//     whitespace between segments is ignored: "1h30m", "90 min", and
//     "30m 1h" all parse to 5400.
//
// Millisecond totals are rounded to the nearest second, half up. Parse
// returns an *InvalidDurationError for empty input, negative values,
// unknown units, unsupported types, or totals beyond 2^31-1 seconds.
func Parse(v any) (uint32, error) {
	switch value := v.(type) {
	case int:
		return fromInt(v, int64(value))
	case int32:
		return fromInt(v, int64(value))
	case int64:
		return fromInt(v, value)
	case uint32:
		return fromInt(v, int64(value))
	case string:
		return ParseString(value)
	default:
		return 0, &InvalidDurationError{Value: v, Message: "unsupported type"}
	}
}

// ParseString parses the string form accepted by Parse.
func ParseString(s string) (uint32, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, &InvalidDurationError{Value: s, Message: "empty duration"}
	}

	var totalMillis int64
	i := 0
	n := len(trimmed)

	for i < n {
		// Skip whitespace between segments.
		for i < n && (trimmed[i] == ' ' || trimmed[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}

		if trimmed[i] == '-' {
			return 0, &InvalidDurationError{Value: s, Message: "negative values not allowed"}
		}

		// Number part.
		numStart := i
		for i < n && trimmed[i] >= '0' && trimmed[i] <= '9' {
			i++
		}
		if i == numStart {
			return 0, &InvalidDurationError{Value: s, Message: fmt.Sprintf("expected number at position %d", i)}
		}

		var amount int64
		for _, c := range trimmed[numStart:i] {
			amount = amount*10 + int64(c-'0')
			if amount > maxSeconds {
				return 0, &InvalidDurationError{Value: s, Message: "duration overflow"}
			}
		}

		// Whitespace may separate a number from its unit ("90 min").
		for i < n && (trimmed[i] == ' ' || trimmed[i] == '\t') {
			i++
		}

		// Unit part.
		unitStart := i
		for i < n && isUnitChar(trimmed[i]) {
			i++
		}
		if i == unitStart {
			return 0, &InvalidDurationError{Value: s, Message: fmt.Sprintf("missing unit at position %d", unitStart)}
		}

		unit := strings.ToLower(trimmed[unitStart:i])
		millis, ok := unitMillis[unit]
		if !ok {
			return 0, &InvalidDurationError{Value: s, Message: fmt.Sprintf("unknown unit %q", unit)}
		}

		totalMillis += amount * millis
		if totalMillis < 0 || totalMillis/1000 > maxSeconds {
			return 0, &InvalidDurationError{Value: s, Message: "duration overflow"}
		}
	}

	// Round half up to whole seconds.
	seconds := (totalMillis + 500) / 1000
	if seconds > maxSeconds {
		return 0, &InvalidDurationError{Value: s, Message: "duration overflow"}
	}

	return uint32(seconds), nil
}

func fromInt(orig any, v int64) (uint32, error) {
	if v < 0 {
		return 0, &InvalidDurationError{Value: orig, Message: "negative values not allowed"}
	}
	if v > maxSeconds {
		return 0, &InvalidDurationError{Value: orig, Message: "duration overflow"}
	}
	return uint32(v), nil
}

func isUnitChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

package analyze

import (
	"context"
	"net"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailTokenRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneTokenRe = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,}[0-9]$`)
)

// token is a body substring with its byte offsets.
type token struct {
	text  string
	start int
	end   int
}

// DetectSensitiveInfo tokenizes body on whitespace and runs the custom
// detector (over windows of cfg.ContextWindowSize consecutive tokens)
// followed by the built-in detectors over each remaining token. The
// detected entities are then split into allowed and denied per cfg:
// with a deny list only listed kinds are denied; with an allow list
// (including the empty default) every other kind is denied.
func (*Local) DetectSensitiveInfo(ctx context.Context, body string, cfg SensitiveInfoConfig) (*SensitiveInfoResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := tokenize(body)
	identified := make([]EntityType, len(tokens))

	if cfg.Detect != nil {
		window := cfg.ContextWindowSize
		if window < 1 {
			window = 1
		}
		runCustomDetect(tokens, identified, window, cfg.Detect)
	}

	for i, tok := range tokens {
		if identified[i] == "" {
			identified[i] = classifyToken(tok.text)
		}
	}

	result := &SensitiveInfoResult{}
	denySet := make(map[EntityType]bool, len(cfg.Deny))
	for _, kind := range cfg.Deny {
		denySet[kind] = true
	}
	allowSet := make(map[EntityType]bool, len(cfg.Allow))
	for _, kind := range cfg.Allow {
		allowSet[kind] = true
	}

	for i, kind := range identified {
		if kind == "" {
			continue
		}
		entity := DetectedEntity{Start: tokens[i].start, End: tokens[i].end, Identified: kind}

		switch {
		case len(cfg.Deny) > 0:
			if denySet[kind] {
				result.Denied = append(result.Denied, entity)
			} else {
				result.Allowed = append(result.Allowed, entity)
			}
		default:
			if allowSet[kind] {
				result.Allowed = append(result.Allowed, entity)
			} else {
				result.Denied = append(result.Denied, entity)
			}
		}
	}

	return result, nil
}

// runCustomDetect slides a window over the tokens and records the
// detector's per-token results. Earlier windows win so a token is
// classified at most once.
func runCustomDetect(tokens []token, identified []EntityType, window int, detect DetectFunc) {
	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = tok.text
	}

	for i := 0; i < len(texts); i++ {
		end := i + window
		if end > len(texts) {
			end = len(texts)
		}

		results := detect(texts[i:end])
		for j, kind := range results {
			if i+j >= len(identified) || kind == "" {
				continue
			}
			if identified[i+j] == "" {
				identified[i+j] = kind
			}
		}
	}
}

// tokenize splits on whitespace, keeping byte offsets for each token.
func tokenize(body string) []token {
	var tokens []token
	start := -1

	for i, r := range body {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, token{text: body[start:i], start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: body[start:], start: start, end: len(body)})
	}

	return tokens
}

// classifyToken runs the built-in detectors against a single token.
func classifyToken(text string) EntityType {
	trimmed := strings.Trim(text, ".,;:!?")

	switch {
	case emailTokenRe.MatchString(trimmed):
		return EntityEmail
	case isCreditCard(trimmed):
		return EntityCreditCardNumber
	case net.ParseIP(trimmed) != nil:
		return EntityIPAddress
	case phoneTokenRe.MatchString(trimmed):
		return EntityPhoneNumber
	}
	return ""
}

// isCreditCard checks for a 13-19 digit string (spaces and dashes
// allowed) that passes the Luhn checksum.
func isCreditCard(text string) bool {
	var digits []int
	for _, c := range text {
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, int(c-'0'))
		case c == ' ' || c == '-':
		default:
			return false
		}
	}

	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	return sum%10 == 0
}

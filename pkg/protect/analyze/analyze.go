package analyze

import (
	"context"
	"fmt"
)

// Analyzer provides the local, side-effect-free analysis primitives the
// protect engine and its local rules invoke. Implementations must be
// pure and fast: the engine does not retry them, and any returned error
// becomes an ERROR result for the calling rule.
type Analyzer interface {
	// GenerateFingerprint computes a stable client fingerprint from the
	// site key, the configured characteristics, and the normalized
	// request projection. The result is deterministic for identical
	// inputs.
	GenerateFingerprint(ctx context.Context, key string, characteristics []string, req map[string]string) (string, error)

	// DetectBot classifies the client from the request projection and
	// splits detected bot identifiers into allowed and denied per cfg.
	DetectBot(ctx context.Context, req map[string]string, cfg BotConfig) (*BotResult, error)

	// IsValidEmail validates an email address and reports which of the
	// requested disqualification kinds apply.
	IsValidEmail(ctx context.Context, email string, opts EmailOptions) (*EmailResult, error)

	// DetectSensitiveInfo scans a request body for sensitive entities
	// and splits them into allowed and denied per cfg.
	DetectSensitiveInfo(ctx context.Context, body string, cfg SensitiveInfoConfig) (*SensitiveInfoResult, error)
}

// BotConfig selects which detected bot identifiers are acceptable.
// At most one of Allow and Deny may be set.
type BotConfig struct {
	// Allow lists identifiers that are permitted; every other detected
	// bot is denied.
	Allow []string

	// Deny lists identifiers that are denied; every other detected bot
	// is allowed.
	Deny []string
}

// BotResult is the outcome of bot detection.
type BotResult struct {
	// Allowed lists detected identifiers permitted by the config.
	Allowed []string

	// Denied lists detected identifiers rejected by the config.
	Denied []string
}

// EmailType is a disqualification kind for an email address.
type EmailType string

const (
	// EmailTypeInvalid marks syntactically invalid addresses.
	EmailTypeInvalid EmailType = "INVALID"

	// EmailTypeDisposable marks throwaway-provider addresses.
	EmailTypeDisposable EmailType = "DISPOSABLE"

	// EmailTypeFree marks free-provider addresses.
	EmailTypeFree EmailType = "FREE"

	// EmailTypeNoMXRecords marks domains without MX records. The local
	// analyzer never reports this kind: resolving MX records requires
	// DNS I/O, which the remote service performs instead.
	EmailTypeNoMXRecords EmailType = "NO_MX_RECORDS"

	// EmailTypeNoGravatar marks addresses without a gravatar. Like
	// NO_MX_RECORDS this kind requires network access and is left to
	// the remote service.
	EmailTypeNoGravatar EmailType = "NO_GRAVATAR"
)

// Validity classifies an email address as a whole.
type Validity string

const (
	ValidityValid   Validity = "valid"
	ValidityInvalid Validity = "invalid"
)

// EmailOptions controls email validation.
type EmailOptions struct {
	// Block lists the disqualification kinds that should be reported.
	Block []EmailType

	// RequireTopLevelDomain rejects bare hostnames like "user@localhost".
	RequireTopLevelDomain bool

	// AllowDomainLiteral accepts bracketed literals like "user@[127.0.0.1]".
	AllowDomainLiteral bool
}

// EmailResult is the outcome of email validation.
type EmailResult struct {
	// Validity is "valid" or "invalid".
	Validity Validity

	// Blocked lists the kinds from EmailOptions.Block that applied.
	// INVALID is listed for an invalid address whether or not it is in
	// EmailOptions.Block.
	Blocked []EmailType
}

// EntityType names a kind of sensitive entity found in request bodies.
// The built-in detectors recognize the constants below; custom detect
// functions may return arbitrary values.
type EntityType string

const (
	EntityEmail            EntityType = "EMAIL"
	EntityPhoneNumber      EntityType = "PHONE_NUMBER"
	EntityIPAddress        EntityType = "IP_ADDRESS"
	EntityCreditCardNumber EntityType = "CREDIT_CARD_NUMBER"
)

// DetectedEntity is one sensitive entity located in a body.
type DetectedEntity struct {
	// Start is the byte offset of the first character of the token.
	Start int `json:"start"`

	// End is the byte offset one past the last character of the token.
	End int `json:"end"`

	// Identified is the entity kind.
	Identified EntityType `json:"identified"`
}

// DetectFunc is a caller-supplied detector. It receives a window of
// consecutive tokens and returns one entity kind per token, using ""
// for tokens that carry nothing. Results shorter than the window are
// permitted.
type DetectFunc func(tokens []string) []EntityType

// SensitiveInfoConfig selects which detected entities are acceptable.
// At most one of Allow and Deny may be set.
type SensitiveInfoConfig struct {
	// Allow lists entity kinds that are permitted; every other detected
	// entity is denied.
	Allow []EntityType

	// Deny lists entity kinds that are denied; every other detected
	// entity is allowed.
	Deny []EntityType

	// ContextWindowSize is how many consecutive tokens a custom
	// detector sees at once. Zero means 1.
	ContextWindowSize int

	// Detect is an optional custom detector that runs before the
	// built-in ones.
	Detect DetectFunc
}

// SensitiveInfoResult is the outcome of a sensitive-info scan.
type SensitiveInfoResult struct {
	// Allowed lists detected entities permitted by the config.
	Allowed []DetectedEntity

	// Denied lists detected entities rejected by the config.
	Denied []DetectedEntity
}

// Local is the built-in Analyzer. It is stateless and safe for
// concurrent use.
type Local struct{}

// NewLocal returns the built-in local analyzer.
func NewLocal() *Local {
	return &Local{}
}

var _ Analyzer = (*Local)(nil)

// MissingCharacteristicError indicates a configured characteristic had
// no value in the request projection.
type MissingCharacteristicError struct {
	Name string
}

// Error returns the error message.
func (e *MissingCharacteristicError) Error() string {
	return fmt.Sprintf("characteristic %q has no value in the request", e.Name)
}

package protect

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrMissingClient indicates New was called without a Client.
	ErrMissingClient = errors.New("client is required")

	// ErrMissingLogger indicates New was called without a Logger.
	ErrMissingLogger = errors.New("logger is required")

	// ErrTooManyRules indicates the engine holds more than MaxRules
	// rules. Its text is surfaced verbatim in the ERROR decision.
	ErrTooManyRules = errors.New("Only 10 rules may be specified")

	// ErrNoRequestBody indicates a rule needed the request body but the
	// adapter could not supply one.
	ErrNoRequestBody = errors.New("request body is not available")
)

// ConstructionError indicates an invalid rule or engine configuration.
// Rule constructors return it for invalid options; New reports a
// missing Client or Logger with ErrMissingClient or ErrMissingLogger.
// Nothing that happens inside Protect is returned as an error: it is
// recovered into an ERROR decision instead.
type ConstructionError struct {
	Rule    string
	Message string
}

// Error returns the error message.
func (e *ConstructionError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("construction error: %s", e.Message)
	}
	return fmt.Sprintf("%s rule: %s", e.Rule, e.Message)
}

// RuleValidationError indicates a rule's Validate call failed. The rule
// becomes an ERROR result and evaluation continues.
type RuleValidationError struct {
	RuleKind string
	Cause    error
}

// Error returns the error message.
func (e *RuleValidationError) Error() string {
	return fmt.Sprintf("%s rule validation failed: %v", e.RuleKind, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RuleValidationError) Unwrap() error {
	return e.Cause
}

// RuleExecutionError indicates a rule's Protect call failed. The rule
// becomes an ERROR result and evaluation continues.
type RuleExecutionError struct {
	RuleKind string
	Cause    error
}

// Error returns the error message.
func (e *RuleExecutionError) Error() string {
	return fmt.Sprintf("%s rule execution failed: %v", e.RuleKind, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RuleExecutionError) Unwrap() error {
	return e.Cause
}

// RemoteDecisionError indicates the remote decide call failed. The
// engine fails open with an ERROR decision carrying this error's text.
type RemoteDecisionError struct {
	Cause error
}

// Error returns the error message.
func (e *RemoteDecisionError) Error() string {
	return fmt.Sprintf("remote decision failed: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RemoteDecisionError) Unwrap() error {
	return e.Cause
}

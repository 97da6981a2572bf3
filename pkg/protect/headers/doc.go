// Package headers provides a case-insensitive multi-value header map
// with deterministic iteration, used by the protect engine to normalize
// request headers before fingerprinting and rule evaluation.
package headers

// Package analyze implements the local analysis primitives behind the
// protect engine: client fingerprinting, user-agent bot classification,
// email validation, and sensitive-information scanning.
//
// Everything here is pure and fast. Checks that need network access
// (MX records, gravatar lookups, behavioral bot signals) belong to the
// remote decision service, not this package.
package analyze

// Package duration parses human-readable duration values into whole
// seconds for rate-limit windows and cache TTLs.
//
// Values are either plain integers (seconds) or strings composed of
// additive "<number><unit>" segments such as "1h30m" or "45 sec".
// Values beyond 2^31-1 seconds are rejected with an error.
package duration

// Package remote implements the protect.Client transport to the
// decision service over HTTPS+JSON.
//
// The client owns connection pooling and timeouts; the engine above it
// fails open whenever a call errors or times out, so the default
// timeout is tight enough to keep the request path responsive.
package remote

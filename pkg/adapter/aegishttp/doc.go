// Package aegishttp adapts the protect engine to net/http: it extracts
// request details (client IP, headers, one-shot lazy body) from an
// *http.Request and provides middleware that denies, challenges, or
// fails open per the engine's decision.
package aegishttp

package protect

import "context"

// Client is the transport to the remote decision service. The engine
// consumes it for the authoritative decide call and for best-effort
// outcome reporting; the implementation owns connections and timeouts.
type Client interface {
	// Decide requests an authoritative decision for the request. A
	// non-zero TTL on a DENY decision signals how long the engine may
	// cache the block.
	Decide(ctx context.Context, ectx *Context, details *RequestDetails, rules []Rule) (*Decision, error)

	// Report delivers the final decision and rule outcomes. It is
	// fire-and-forget from the engine's perspective: errors are logged
	// by the caller and never change the decision.
	Report(ctx context.Context, ectx *Context, details *RequestDetails, decision *Decision, rules []Rule) error
}

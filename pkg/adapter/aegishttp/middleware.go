package aegishttp

import (
	"net/http"
	"strconv"
	"time"

	"mercator-hq/aegis/pkg/protect"
	"mercator-hq/aegis/pkg/telemetry/metrics"
)

// Options configures the middleware.
type Options struct {
	// Metrics, when set, records decision counts and latency.
	Metrics *metrics.Collector

	// OnDenied overrides the default denial response (403, or 429 for
	// rate-limit denials).
	OnDenied func(w http.ResponseWriter, r *http.Request, decision *protect.Decision)

	// Extra derives caller-defined request properties, e.g. values for
	// user-defined characteristics.
	Extra func(r *http.Request) map[string]any
}

// Middleware returns net/http middleware that runs every request
// through the engine. It is compatible with chi, gorilla/mux, and any
// router accepting func(http.Handler) http.Handler.
//
// Denied requests are rejected before the wrapped handler runs. ERROR
// decisions fail open: the request proceeds.
func Middleware(engine *protect.Engine, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var extra map[string]any
			if opts.Extra != nil {
				extra = opts.Extra(r)
			}

			start := time.Now()
			decision := engine.Protect(r.Context(), NewRequest(r, extra))

			if opts.Metrics != nil {
				reason := string(protect.ReasonKindGeneric)
				if decision.Reason != nil {
					reason = string(decision.Reason.Kind())
				}
				opts.Metrics.RecordDecision(string(decision.Conclusion), reason, time.Since(start).Seconds())
				if decision.FromCache() {
					opts.Metrics.RecordCacheHit()
				}
			}

			if decision.IsDenied() || decision.IsChallenged() {
				if opts.OnDenied != nil {
					opts.OnDenied(w, r, decision)
					return
				}
				writeDenial(w, decision)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeDenial maps the denial to a status code: 429 for rate limits
// (with Retry-After when the reason carries a reset), 403 otherwise.
func writeDenial(w http.ResponseWriter, decision *protect.Decision) {
	if reason, ok := decision.Reason.(*protect.RateLimitReason); ok {
		if reason.Reset > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(reason.Reset)))
		}
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
}

package aegishttp

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"

	"mercator-hq/aegis/pkg/protect"
)

// maxBodyBytes caps how much request body the sensitive-info scanner
// reads.
const maxBodyBytes = 1 << 20

// NewRequest builds the protect request from an incoming HTTP request.
// The body is wired lazily and read at most once; when a rule pulls
// it, the consumed bytes are replayed for downstream handlers.
func NewRequest(r *http.Request, extra map[string]any) *protect.Request {
	return &protect.Request{
		IP:       ClientIP(r),
		Method:   r.Method,
		Protocol: r.Proto,
		Host:     r.Host,
		Path:     r.URL.Path,
		Headers:  r.Header,
		Cookies:  r.Header.Get("Cookie"),
		Query:    r.URL.RawQuery,
		GetBody:  bodyReader(r),
		Extra:    extra,
	}
}

// bodyReader memoizes a one-shot read of the request body. The read
// bytes are put back on r.Body so the wrapped handler still sees them.
func bodyReader(r *http.Request) protect.BodyFunc {
	var once sync.Once
	var body string
	var ok bool
	var err error

	return func(context.Context) (string, bool, error) {
		once.Do(func() {
			if r.Body == nil || r.Body == http.NoBody {
				return
			}

			orig := r.Body
			data, readErr := io.ReadAll(io.LimitReader(orig, maxBodyBytes))
			// Replay the consumed bytes, then hand back the rest of the
			// original stream for bodies above the cap.
			r.Body = replayBody{Reader: io.MultiReader(strings.NewReader(string(data)), orig), closer: orig}
			if readErr != nil {
				err = readErr
				return
			}
			body = string(data)
			ok = true
		})
		return body, ok, err
	}
}

// replayBody joins a replayed prefix with the original stream while
// keeping the original closer.
type replayBody struct {
	io.Reader
	closer io.Closer
}

// Close closes the original body.
func (b replayBody) Close() error { return b.closer.Close() }

// ClientIP resolves the client address the engine fingerprints on.
// Proxy headers win over the socket peer: the first X-Forwarded-For
// entry, then X-Real-IP, then RemoteAddr. Candidates are parsed rather
// than string-sliced, so ports, brackets, and padding are handled
// uniformly and the result is in canonical form; a candidate that is
// not an address is skipped. When nothing parses (a unix socket peer,
// a garbage header) the trimmed RemoteAddr is returned as-is.
func ClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if idx := strings.IndexByte(xff, ','); idx >= 0 {
		xff = xff[:idx]
	}

	for _, candidate := range []string{xff, r.Header.Get("X-Real-IP"), r.RemoteAddr} {
		if ip := canonicalIP(candidate); ip != "" {
			return ip
		}
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// canonicalIP parses raw as an IP address with an optional port and
// optional IPv6 brackets, returning its canonical text form, or ""
// when raw is not an address.
func canonicalIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	} else {
		raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return ""
	}
	return addr.String()
}

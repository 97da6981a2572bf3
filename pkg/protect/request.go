package protect

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"mercator-hq/aegis/pkg/protect/analyze"
	"mercator-hq/aegis/pkg/protect/headers"
)

// Request is the caller-supplied view of an incoming request. Adapters
// build one per request; every field is optional. Properties beyond the
// known set go into Extra and are stringified into the snapshot.
type Request struct {
	IP       string
	Method   string
	Protocol string
	Host     string
	Path     string

	// Headers accepts a *headers.Map, a map[string]string, a
	// map[string][]string, or an http.Header.
	Headers any

	Cookies string
	Query   string
	Email   string

	// Body is the literal request body, for callers that already hold
	// it. Adapters that can only read the body once should set GetBody
	// instead.
	Body string

	// GetBody lazily yields the request body; it wins over Body.
	GetBody BodyFunc

	// Extra holds caller-defined properties, e.g. values for
	// user-defined characteristics.
	Extra map[string]any
}

// RequestDetails is the immutable request snapshot every rule sees.
// It is frozen before the first rule runs; rules must not mutate it.
type RequestDetails struct {
	IP       string
	Method   string
	Protocol string
	Host     string
	Path     string
	Headers  *headers.Map
	Cookies  string
	Query    string
	Email    string

	// Extra holds the stringified unknown properties.
	Extra map[string]string
}

// newRequestDetails builds the snapshot from a caller request.
// A nil request is treated as empty.
func newRequestDetails(req *Request) *RequestDetails {
	if req == nil {
		req = &Request{}
	}

	details := &RequestDetails{
		IP:       req.IP,
		Method:   req.Method,
		Protocol: req.Protocol,
		Host:     req.Host,
		Path:     req.Path,
		Headers:  coerceHeaders(req.Headers),
		Cookies:  req.Cookies,
		Query:    req.Query,
		Email:    req.Email,
		Extra:    make(map[string]string, len(req.Extra)),
	}

	for key, value := range req.Extra {
		details.Extra[key] = stringify(value)
	}

	return details
}

// coerceHeaders normalizes the accepted header representations.
func coerceHeaders(v any) *headers.Map {
	switch h := v.(type) {
	case nil:
		return headers.New()
	case *headers.Map:
		return headers.Clone(h)
	case map[string]string:
		return headers.FromMap(h)
	case map[string][]string:
		return headers.FromValues(h)
	case http.Header:
		return headers.FromHTTP(h)
	default:
		return headers.New()
	}
}

// stringify converts an extra property to its wire string. Numbers use
// their decimal form, booleans become "true"/"false", and anything
// without an obvious string form becomes the unsupported marker.
func stringify(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case bool:
		if value {
			return "true"
		}
		return "false"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", value)
	case float32, float64:
		return fmt.Sprintf("%g", value)
	default:
		return "<unsupported value>"
	}
}

// projection flattens the snapshot into the string→string mapping the
// analyzer consumes: well-known characteristic keys for the intrinsic
// fields, one key per header, cookie, and query argument, and the extra
// properties verbatim.
func (d *RequestDetails) projection() map[string]string {
	proj := make(map[string]string)

	if d.IP != "" {
		proj[analyze.CharacteristicIP] = d.IP
	}
	if d.Host != "" {
		proj[analyze.CharacteristicHost] = d.Host
	}
	if d.Method != "" {
		proj[analyze.CharacteristicMethod] = d.Method
	}
	if d.Path != "" {
		proj[analyze.CharacteristicPath] = d.Path
	}

	for name, value := range d.Headers.Flatten() {
		proj[analyze.HeaderKey(name)] = value
	}

	for _, cookie := range parseCookies(d.Cookies) {
		proj[analyze.CookieKey(cookie.Name)] = cookie.Value
	}

	if d.Query != "" {
		if values, err := url.ParseQuery(strings.TrimPrefix(d.Query, "?")); err == nil {
			for name := range values {
				proj[analyze.QueryKey(name)] = values.Get(name)
			}
		}
	}

	for key, value := range d.Extra {
		proj[key] = value
	}

	return proj
}

// parseCookies parses a Cookie header value.
func parseCookies(raw string) []*http.Cookie {
	if raw == "" {
		return nil
	}
	header := http.Header{}
	header.Add("Cookie", raw)
	req := http.Request{Header: header}
	return req.Cookies()
}

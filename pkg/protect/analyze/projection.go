package analyze

import (
	"fmt"
	"strings"
)

// Well-known characteristic names. Characteristics with these names are
// request-intrinsic: their values come from the request snapshot itself
// and require no extra caller-supplied property.
const (
	CharacteristicIP     = "ip.src"
	CharacteristicHost   = "http.host"
	CharacteristicMethod = "http.method"
	CharacteristicPath   = "http.request.uri.path"
)

// HeaderKey returns the projection key for a named request header,
// matching the http.request.headers["<name>"] characteristic form.
func HeaderKey(name string) string {
	return fmt.Sprintf("http.request.headers[%q]", name)
}

// CookieKey returns the projection key for a named cookie.
func CookieKey(name string) string {
	return fmt.Sprintf("http.request.cookie[%q]", name)
}

// QueryKey returns the projection key for a named query argument.
func QueryKey(name string) string {
	return fmt.Sprintf("http.request.uri.args[%q]", name)
}

// WellKnown reports whether name is a well-known characteristic.
// Well-known characteristics are request-intrinsic: a request that
// lacks the underlying field contributes an empty value instead of
// failing fingerprinting.
func WellKnown(name string) bool {
	switch name {
	case CharacteristicIP, CharacteristicHost, CharacteristicMethod, CharacteristicPath:
		return true
	}
	for _, prefix := range []string{"http.request.headers[", "http.request.cookie[", "http.request.uri.args["} {
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, "]") {
			return true
		}
	}
	return false
}

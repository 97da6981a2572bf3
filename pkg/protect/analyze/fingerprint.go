package analyze

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// fingerprintVersion prefixes every fingerprint so that a future hash
// or projection change invalidates cached blocks instead of colliding
// with them.
const fingerprintVersion = "fp1"

// GenerateFingerprint computes a stable client fingerprint.
//
// The canonical input is the site key followed by each characteristic
// name and its resolved value, in configuration order. Every
// user-defined characteristic must resolve to a value in the
// projection; a missing one is a *MissingCharacteristicError so that
// misconfiguration surfaces on the first request rather than silently
// weakening the fingerprint. A missing well-known characteristic
// contributes an empty value.
func (*Local) GenerateFingerprint(ctx context.Context, key string, characteristics []string, req map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var canonical strings.Builder
	canonical.WriteString("key=")
	canonical.WriteString(key)

	for _, name := range characteristics {
		value, ok := req[name]
		if !ok {
			// Well-known characteristics are intrinsic and may simply
			// be absent from this request; only user-defined names are
			// required to resolve.
			if !WellKnown(name) {
				return "", &MissingCharacteristicError{Name: name}
			}
			value = ""
		}
		fmt.Fprintf(&canonical, ";%s=%s", name, value)
	}

	sum := sha256.Sum256([]byte(canonical.String()))
	return fingerprintVersion + ":" + hex.EncodeToString(sum[:]), nil
}

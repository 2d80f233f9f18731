// Package identity derives stable, content-addressed ids for substrate
// records. The same normalized parts always hash to the same id, which makes
// every insert idempotent.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Prefix marks ids produced by this package.
const Prefix = "sha256:"

// Hash returns "sha256:<hex>" over the parts joined with an unambiguous
// separator. Parts are included in order; an empty part still contributes a
// separator so ("a","") and ("a") hash differently.
func Hash(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0x1f})
		}
		h.Write([]byte(p))
	}
	return Prefix + hex.EncodeToString(h.Sum(nil))
}

// HashList folds a slice into a single part, preserving element order.
func HashList(items []string) string {
	return Hash(strings.Join(items, "\x1e"))
}

// TimePart normalizes a timestamp for hashing. UTC nanosecond RFC 3339 keeps
// ids stable across time zones.
func TimePart(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FloatPart normalizes a float for hashing.
func FloatPart(f float64) string {
	return fmt.Sprintf("%g", f)
}

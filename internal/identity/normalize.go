// Package identity resolves the several ways a person is referred to across the roster:
// an "@handle", a legacy member record id, or a display name.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHandle trims, lower-cases and strips one leading "@".
func NormalizeHandle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "@")
}

// NormalizeName folds a display name for comparison: decomposed, diacritics removed,
// lower-cased and trimmed. "José" and "jose " normalize to the same key.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// WithAt returns the handle with exactly one leading "@".
func WithAt(handle string) string {
	return "@" + NormalizeHandle(handle)
}

// Package textnorm builds accent and case insensitive keys for names typed by humans.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key folds s into a comparison key: accents stripped, case folded, whitespace collapsed.
// "  Salle de Bain " and "salle de bain" share a key.
func Key(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// Slug returns a URL-safe identifier derived from Key.
func Slug(s string) string {
	key := Key(s)
	var b strings.Builder
	b.Grow(len(key))
	dash := false
	for _, r := range key {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SearchKey joins the keys of the non-empty parts with a single space.
func SearchKey(parts ...string) string {
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := Key(p); k != "" {
			keys = append(keys, k)
		}
	}
	return strings.Join(keys, " ")
}

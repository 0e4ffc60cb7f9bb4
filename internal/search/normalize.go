// Package search provides the fuzzy text index used for catalog search.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds s for matching: diacritics are stripped, case is folded and
// runs of whitespace collapse to a single space.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	// Transformers carry state, so a fresh chain is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	folded := cases.Fold().String(stripped)

	return strings.Join(strings.Fields(folded), " ")
}

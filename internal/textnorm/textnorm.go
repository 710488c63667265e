// Package textnorm folds free text into the form used for address matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize lowercases s, removes diacritics and trims surrounding whitespace.
// "  León, GTO " becomes "leon, gto".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		// transform only fails on invalid state; fall back to lowercase
		folded = strings.ToLower(s)
	}
	return strings.TrimSpace(folded)
}

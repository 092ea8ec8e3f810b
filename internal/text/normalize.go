// Package text canonicalizes answer text for comparison.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to base letters plus combining marks, drops the
// marks, and recomposes. "José" becomes "Jose".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds diacritics, lowercases, and trims and collapses
// whitespace. Total: defined for every input, including the empty string.
func Normalize(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Invalid UTF-8 passes through unfolded rather than failing a grade.
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

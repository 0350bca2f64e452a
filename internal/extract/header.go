package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// headerFold strips diacritics so "Établissement" folds to "etablissement".
var headerFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CanonicalHeader maps a raw header cell to the snake_case form used as a
// record key: diacritics removed, lowercased, runs of non-alphanumerics
// collapsed to single underscores. "Dept Code" and "dept-code" both become
// "dept_code".
func CanonicalHeader(h string) string {
	folded, _, err := transform.String(headerFold, h)
	if err != nil {
		folded = h
	}
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// CanonicalHeaders canonicalizes every cell of a header row.
func CanonicalHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = CanonicalHeader(h)
	}
	return out
}

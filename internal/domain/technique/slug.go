package technique

import (
	"strings"
	"unicode"

	"curriculum/internal/domain/shared"
)

// NormalizeSlug derives the deduplication key for a technique name: accents
// removed, lowercase, every run of whitespace or punctuation collapsed to a
// single hyphen. "Front Kick", "front kick " and "Front-Kick!" share the slug
// "front-kick".
func NormalizeSlug(name string) string {
	folded := shared.Fold(name)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

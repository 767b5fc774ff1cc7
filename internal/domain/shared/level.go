// Package shared holds value types used by more than one domain package.
package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Level is the difficulty of a course, lesson or technique.
type Level string

const (
	LevelBeginner     Level = "BEGINNER"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelAdvanced     Level = "ADVANCED"
)

// levelAliases maps folded, accent-free spellings to a Level. Imported
// material is written in both English and Portuguese.
var levelAliases = map[string]Level{
	"beginner":      LevelBeginner,
	"basic":         LevelBeginner,
	"iniciante":     LevelBeginner,
	"basico":        LevelBeginner,
	"intermediate":  LevelIntermediate,
	"intermediario": LevelIntermediate,
	"advanced":      LevelAdvanced,
	"avancado":      LevelAdvanced,
	"expert":        LevelAdvanced,
}

// ParseLevel maps free-form difficulty text onto a Level. Unknown or empty
// text yields LevelBeginner.
func ParseLevel(raw string) Level {
	if l, ok := levelAliases[Fold(raw)]; ok {
		return l
	}
	return LevelBeginner
}

// IsValid reports whether l is one of the known levels.
func (l Level) IsValid() bool {
	return l == LevelBeginner || l == LevelIntermediate || l == LevelAdvanced
}

func (l Level) String() string {
	return string(l)
}

// Fold returns s trimmed, case folded and stripped of combining marks, with
// inner whitespace collapsed to single spaces.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

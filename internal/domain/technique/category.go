package technique

import (
	"strings"

	"curriculum/internal/domain/shared"
)

// Category classifies a technique.
type Category string

const (
	CategoryPunch     Category = "PUNCH"
	CategoryKick      Category = "KICK"
	CategoryDefense   Category = "DEFENSE"
	CategoryElbow     Category = "ELBOW"
	CategoryKnee      Category = "KNEE"
	CategoryFall      Category = "FALL"
	CategoryStance    Category = "STANCE"
	CategoryGrappling Category = "GRAPPLING"
	CategoryOther     Category = "OTHER"
)

// categoryKeywords is checked in order; the first keyword found in the
// folded name decides.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryPunch, []string{"jab", "soco", "direto", "cross", "punch"}},
	{CategoryKick, []string{"chute", "kick"}},
	{CategoryDefense, []string{"defesa", "defense"}},
	{CategoryElbow, []string{"cotovelo", "elbow"}},
	{CategoryKnee, []string{"joelho", "knee"}},
	{CategoryFall, []string{"queda", "rolamento", "fall", "roll"}},
	{CategoryStance, []string{"postura", "guarda", "stance", "guard"}},
	{CategoryGrappling, []string{"agarramento", "estrangulamento", "grab", "choke"}},
}

// InferCategory guesses a category from a technique name.
func InferCategory(name string) Category {
	folded := shared.Fold(name)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(folded, kw) {
				return entry.category
			}
		}
	}
	return CategoryOther
}

// ParseCategory normalizes document supplied category text. Empty input
// returns the empty category so callers can fall back to InferCategory.
func ParseCategory(raw string) Category {
	folded := shared.Fold(raw)
	if folded == "" {
		return ""
	}
	return Category(strings.ToUpper(strings.ReplaceAll(folded, " ", "_")))
}

func (c Category) String() string {
	return string(c)
}

package document

import (
	"curriculum/internal/domain/shared"
	"curriculum/internal/domain/technique"
)

// refSet accumulates technique mentions keyed by slug. The first spelling of
// a name is kept; for every other field the last non-empty value wins and a
// disagreement is recorded as a conflict.
type refSet struct {
	refs      []TechniqueRef
	index     map[string]int
	conflicts []Conflict
}

func newRefSet() *refSet {
	return &refSet{index: make(map[string]int)}
}

func (s *refSet) add(ref TechniqueRef) {
	i, ok := s.index[ref.Slug]
	if !ok {
		s.index[ref.Slug] = len(s.refs)
		s.refs = append(s.refs, ref)
		return
	}

	cur := &s.refs[i]
	cur.Category = s.merge(cur.Slug, "category", cur.Category, ref.Category, sameCategory)
	cur.Difficulty = s.merge(cur.Slug, "difficulty", cur.Difficulty, ref.Difficulty, sameLevel)
	cur.Description = s.merge(cur.Slug, "description", cur.Description, ref.Description, sameText)
}

func (s *refSet) merge(slug, field, prev, next string, same func(a, b string) bool) string {
	switch {
	case next == "":
		return prev
	case prev == "":
		return next
	case same(prev, next):
		return prev
	}
	s.conflicts = append(s.conflicts, Conflict{Slug: slug, Field: field, Previous: prev, Value: next})
	return next
}

func (s *refSet) get(slug string) TechniqueRef {
	return s.refs[s.index[slug]]
}

func sameCategory(a, b string) bool {
	return technique.ParseCategory(a) == technique.ParseCategory(b)
}

func sameLevel(a, b string) bool {
	return shared.ParseLevel(a) == shared.ParseLevel(b)
}

func sameText(a, b string) bool {
	return shared.Fold(a) == shared.Fold(b)
}

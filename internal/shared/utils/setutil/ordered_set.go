// Package setutil provides set utilities for ID collections.
package setutil

// OrderedSet is a set that remembers insertion order.
type OrderedSet[K comparable] struct {
	index map[K]int
	items []K
}

// NewOrderedSet creates an empty OrderedSet.
func NewOrderedSet[K comparable]() *OrderedSet[K] {
	return &OrderedSet[K]{index: make(map[K]int)}
}

// Add inserts k if absent and reports whether it was added.
func (s *OrderedSet[K]) Add(k K) bool {
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, k)
	return true
}

// Has returns true if k exists in the set.
func (s *OrderedSet[K]) Has(k K) bool {
	_, ok := s.index[k]
	return ok
}

// Position returns the zero-based insertion position of k, or -1.
func (s *OrderedSet[K]) Position(k K) int {
	if i, ok := s.index[k]; ok {
		return i
	}
	return -1
}

// Items returns the members in insertion order. The slice must not be modified.
func (s *OrderedSet[K]) Items() []K {
	return s.items
}

// Len returns the number of elements in the set.
func (s *OrderedSet[K]) Len() int {
	return len(s.items)
}

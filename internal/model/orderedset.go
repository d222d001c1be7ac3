package model

import "slices"

// OrderedSet is a set that iterates in insertion order. Adding an element
// that is already present is a no-op.
type OrderedSet[T comparable] struct {
	items []T
	index map[T]struct{}
}

// NewOrderedSet returns a set holding items in order, skipping duplicates.
func NewOrderedSet[T comparable](items ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{index: make(map[T]struct{}, len(items))}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add appends v unless it is already present. It reports whether v was added.
func (s *OrderedSet[T]) Add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Contains reports whether v is in the set.
func (s *OrderedSet[T]) Contains(v T) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[v]
	return ok
}

// Len returns the number of elements.
func (s *OrderedSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns a copy of the elements in insertion order.
func (s *OrderedSet[T]) Items() []T {
	if s == nil {
		return nil
	}
	return slices.Clone(s.items)
}

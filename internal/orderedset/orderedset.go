// Package orderedset is an insertion-ordered set with membership checks.
package orderedset

// Set keeps the first occurrence of each value in insertion order.
type Set[T comparable] struct {
	items []T
	index map[T]struct{}
}

// New returns a set seeded with vals.
func New[T comparable](vals ...T) *Set[T] {
	s := &Set[T]{index: make(map[T]struct{}, len(vals))}
	s.Add(vals...)
	return s
}

// Add appends each value not already present. It reports whether anything was added.
func (s *Set[T]) Add(vals ...T) bool {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	added := false
	for _, v := range vals {
		if _, ok := s.index[v]; ok {
			continue
		}
		s.index[v] = struct{}{}
		s.items = append(s.items, v)
		added = true
	}
	return added
}

// Has reports membership.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of distinct values.
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Slice returns a copy of the values in insertion order.
func (s *Set[T]) Slice() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Head returns at most n values in insertion order. It never returns nil.
func (s *Set[T]) Head(n int) []T {
	if n < 0 || n > len(s.items) {
		n = len(s.items)
	}
	out := make([]T, n)
	copy(out, s.items[:n])
	return out
}

package utils

// OrderedSet keeps the first-insertion order of its members and ignores duplicates.
type OrderedSet[T comparable] struct {
	items []T
	index map[T]int
}

func NewOrderedSet[T comparable](items ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{index: make(map[T]int, len(items))}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add reports whether item was newly inserted.
func (s *OrderedSet[T]) Add(item T) bool {
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = len(s.items)
	s.items = append(s.items, item)
	return true
}

func (s *OrderedSet[T]) Has(item T) bool {
	_, ok := s.index[item]
	return ok
}

func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}

// Items returns a copy; callers may keep or mutate it.
func (s *OrderedSet[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Difference returns the members of s missing from other, in s order.
func (s *OrderedSet[T]) Difference(other *OrderedSet[T]) []T {
	out := []T{}
	for _, item := range s.items {
		if !other.Has(item) {
			out = append(out, item)
		}
	}
	return out
}

// Intersect returns the members of s also present in other, in s order.
func (s *OrderedSet[T]) Intersect(other *OrderedSet[T]) []T {
	out := []T{}
	for _, item := range s.items {
		if other.Has(item) {
			out = append(out, item)
		}
	}
	return out
}

// Filter returns the members for which keep is true, in order.
func (s *OrderedSet[T]) Filter(keep func(T) bool) []T {
	out := []T{}
	for _, item := range s.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

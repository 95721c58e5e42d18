package dag

// ResourceSet is an insertion-ordered map keyed by resource name. Put on an
// existing key replaces the value but keeps the original position.
type ResourceSet[T any] struct {
	index map[string]int
	items []T
}

// NewResourceSet returns an empty set.
func NewResourceSet[T any]() *ResourceSet[T] {
	return &ResourceSet[T]{index: make(map[string]int)}
}

// Put inserts or replaces the value stored under name.
func (s *ResourceSet[T]) Put(name string, v T) {
	if i, ok := s.index[name]; ok {
		s.items[i] = v
		return
	}
	s.index[name] = len(s.items)
	s.items = append(s.items, v)
}

// Get returns the value stored under name.
func (s *ResourceSet[T]) Get(name string) (T, bool) {
	i, ok := s.index[name]
	if !ok {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

// Len is the number of distinct names.
func (s *ResourceSet[T]) Len() int { return len(s.items) }

// Values returns the stored values in first-insertion order, never nil.
func (s *ResourceSet[T]) Values() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

package dag

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResourceSetKeepsFirstPositionLastValue(t *testing.T) {
	s := NewResourceSet[string]()
	s.Put("a", "a1")
	s.Put("b", "b1")
	s.Put("a", "a2")

	if diff := cmp.Diff([]string{"a2", "b1"}, s.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if v, ok := s.Get("a"); !ok || v != "a2" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}
	if _, ok := s.Get("zzz"); ok {
		t.Fatal("Get of missing name should report false")
	}
}

func TestResourceSetValuesIsCopy(t *testing.T) {
	s := NewResourceSet[int]()
	s.Put("x", 1)
	vals := s.Values()
	vals[0] = 99
	if v, _ := s.Get("x"); v != 1 {
		t.Fatalf("mutating Values leaked into set: %d", v)
	}
}

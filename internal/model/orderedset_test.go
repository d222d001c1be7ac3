package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOrderedSet(t *testing.T) {
	t.Parallel()

	t.Run("keeps insertion order and drops repeats", func(t *testing.T) {
		t.Parallel()
		s := NewOrderedSet("Cantos", "Friends", "Cantos", "Ayla")
		if diff := cmp.Diff([]string{"Cantos", "Friends", "Ayla"}, s.Items()); diff != "" {
			t.Errorf("Items() mismatch (-want +got):\n%s", diff)
		}
		if s.Add("Friends") {
			t.Error("re-adding an element should be a no-op")
		}
		if s.Len() != 3 {
			t.Errorf("Len() = %d, want 3", s.Len())
		}
	})

	t.Run("zero value is usable", func(t *testing.T) {
		t.Parallel()
		var s OrderedSet[string]
		if !s.Add("x") {
			t.Error("Add on zero value should succeed")
		}
		if !s.Contains("x") {
			t.Error("Contains(x) = false")
		}
	})

	t.Run("nil set reads as empty", func(t *testing.T) {
		t.Parallel()
		var s *OrderedSet[string]
		if s.Len() != 0 || s.Contains("x") || s.Items() != nil {
			t.Error("nil set should read as empty")
		}
	})

	t.Run("items is a copy", func(t *testing.T) {
		t.Parallel()
		s := NewOrderedSet("a", "b")
		items := s.Items()
		items[0] = "z"
		if s.Items()[0] != "a" {
			t.Error("mutating Items() result changed the set")
		}
	})
}

package utils

import (
	"reflect"
	"testing"
)

func TestOrderedSetDeduplicates(t *testing.T) {
	s := NewOrderedSet("b", "a", "b", "c", "a")
	if !reflect.DeepEqual(s.Items(), []string{"b", "a", "c"}) {
		t.Fatalf("unexpected items %v", s.Items())
	}
	if s.Add("a") {
		t.Fatalf("expected duplicate add to report false")
	}
	if !s.Add("d") || s.Len() != 4 {
		t.Fatalf("expected d to be appended")
	}
}

func TestOrderedSetDifferenceIntersect(t *testing.T) {
	next := NewOrderedSet("x", "y", "z")
	prev := NewOrderedSet("z", "w", "x")

	if got := next.Difference(prev); !reflect.DeepEqual(got, []string{"y"}) {
		t.Fatalf("unexpected difference %v", got)
	}
	if got := next.Intersect(prev); !reflect.DeepEqual(got, []string{"x", "z"}) {
		t.Fatalf("unexpected intersection %v", got)
	}
	if got := next.Filter(func(s string) bool { return s != "y" }); !reflect.DeepEqual(got, []string{"x", "z"}) {
		t.Fatalf("unexpected filter %v", got)
	}
}

package source

import "testing"

func TestSpanBasics(t *testing.T) {
	s := Span{File: 1, Start: 4, End: 9}
	if s.Empty() {
		t.Error("span should not be empty")
	}
	if s.Len() != 5 {
		t.Errorf("Len = %d, want 5", s.Len())
	}
	if !s.Contains(4) || s.Contains(9) {
		t.Error("Contains must treat the range as half-open")
	}
	if (Span{Start: 3, End: 3}).Empty() == false {
		t.Error("zero-length span should be empty")
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 0, Start: 5, End: 10}
	b := Span{File: 0, Start: 2, End: 7}
	got := a.Cover(b)
	if got.Start != 2 || got.End != 10 {
		t.Errorf("Cover = %v", got)
	}

	other := Span{File: 1, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("Cover across files must be a no-op, got %v", got)
	}
}

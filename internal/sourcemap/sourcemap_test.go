package sourcemap

import "testing"

func buildMap() *Map {
	// Original: 0..10 copied, 10..40 replaced by 10..18, 40..60 copied.
	m := New()
	m.AddCopy(0, 0, 10)
	m.AddReplacement(10, 18, 10, 40)
	m.AddCopy(18, 40, 20)
	return m
}

func TestResolveCopiedRange(t *testing.T) {
	m := buildMap()
	if got, ok := m.Resolve(3); !ok || got != 3 {
		t.Errorf("Resolve(3) = %d, %v", got, ok)
	}
	// After the replacement, offsets shift by -22.
	if got, ok := m.Resolve(25); !ok || got != 47 {
		t.Errorf("Resolve(25) = %d, %v; want 47", got, ok)
	}
}

func TestResolveReplacedRange(t *testing.T) {
	m := buildMap()
	for _, off := range []uint32{10, 14, 17} {
		got, ok := m.Resolve(off)
		if !ok || got != 10 {
			t.Errorf("Resolve(%d) = %d, %v; want start of original span", off, got, ok)
		}
	}
}

func TestResolveOutOfRange(t *testing.T) {
	m := buildMap()
	if _, ok := m.Resolve(38); ok {
		t.Error("offset past the mapped text should not resolve")
	}
}

func TestZeroLengthSegmentsAreDropped(t *testing.T) {
	m := New()
	m.AddCopy(0, 0, 0)
	m.AddReplacement(5, 5, 5, 5)
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want 0", m.Len())
	}
}

func TestRoundTripSegments(t *testing.T) {
	m := buildMap()
	rebuilt := FromSegments(m.Segments())
	if rebuilt.Len() != m.Len() {
		t.Fatalf("Len mismatch: %d vs %d", rebuilt.Len(), m.Len())
	}
	if got, ok := rebuilt.Resolve(25); !ok || got != 47 {
		t.Errorf("rebuilt Resolve(25) = %d, %v", got, ok)
	}
}

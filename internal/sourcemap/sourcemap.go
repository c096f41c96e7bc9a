// Package sourcemap correlates byte offsets in rewritten text with offsets
// in the original source, so downstream tools can attribute positions in
// the output back to the input.
package sourcemap

import "sort"

// Segment maps one contiguous range of the rewritten text to its origin.
// Copied ranges preserve length; replaced ranges collapse a whole original
// span (a folded call expression) into a shorter literal, so the two sides
// need not be the same size.
type Segment struct {
	NewStart  uint32
	NewEnd    uint32
	OrigStart uint32
	OrigEnd   uint32
	Replaced  bool
}

// Map is the position-mapping artifact produced alongside rewritten text.
// Segments are ordered by NewStart and non-overlapping.
type Map struct {
	segments []Segment
}

// New creates an empty Map.
func New() *Map {
	return &Map{}
}

// AddCopy records a verbatim-copied range: newStart in the output
// corresponds to origStart in the input for length bytes.
func (m *Map) AddCopy(newStart, origStart, length uint32) {
	if length == 0 {
		return
	}
	m.segments = append(m.segments, Segment{
		NewStart:  newStart,
		NewEnd:    newStart + length,
		OrigStart: origStart,
		OrigEnd:   origStart + length,
	})
}

// AddReplacement records a substituted range: the output range replaces the
// whole original span.
func (m *Map) AddReplacement(newStart, newEnd, origStart, origEnd uint32) {
	if newStart == newEnd && origStart == origEnd {
		return
	}
	m.segments = append(m.segments, Segment{
		NewStart:  newStart,
		NewEnd:    newEnd,
		OrigStart: origStart,
		OrigEnd:   origEnd,
		Replaced:  true,
	})
}

// Resolve maps an offset in the rewritten text to the corresponding offset
// in the original text. Offsets inside a copied range map one-to-one;
// offsets inside a replaced range map to the start of the original span.
func (m *Map) Resolve(newOff uint32) (uint32, bool) {
	i := sort.Search(len(m.segments), func(i int) bool {
		return m.segments[i].NewEnd > newOff
	})
	if i >= len(m.segments) || newOff < m.segments[i].NewStart {
		return 0, false
	}
	seg := m.segments[i]
	if seg.Replaced {
		return seg.OrigStart, true
	}
	return seg.OrigStart + (newOff - seg.NewStart), true
}

// Len returns the number of segments.
func (m *Map) Len() int {
	return len(m.segments)
}

// Segments returns a copy of the segment list, for serialization.
func (m *Map) Segments() []Segment {
	out := make([]Segment, len(m.segments))
	copy(out, m.segments)
	return out
}

// FromSegments rebuilds a Map from serialized segments.
func FromSegments(segments []Segment) *Map {
	m := &Map{segments: make([]Segment, len(segments))}
	copy(m.segments, segments)
	return m
}

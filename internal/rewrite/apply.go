package rewrite

import (
	"fmt"

	"fortio.org/safecast"

	"twfold/internal/sourcemap"
)

// applyEdits produces the rewritten text in one left-to-right pass,
// copying unedited spans verbatim and substituting each edit's replacement,
// while recording the position map. The edit list must be ordered ascending
// by start offset and pairwise disjoint, which the walk guarantees.
func applyEdits(src []byte, edits []Edit) ([]byte, *sourcemap.Map) {
	out := make([]byte, 0, len(src))
	posMap := sourcemap.New()

	var cursor uint32
	for _, e := range edits {
		if e.Span.Start < cursor {
			// Disjointness is an engine invariant; breaking it is a bug.
			panic(fmt.Sprintf("rewrite: overlapping edit at %d before cursor %d", e.Span.Start, cursor))
		}
		if copyLen := e.Span.Start - cursor; copyLen > 0 {
			posMap.AddCopy(byteLen(out), cursor, copyLen)
			out = append(out, src[cursor:e.Span.Start]...)
		}
		newStart := byteLen(out)
		out = append(out, e.NewText...)
		posMap.AddReplacement(newStart, byteLen(out), e.Span.Start, e.Span.End)
		cursor = e.Span.End
	}
	if tail := byteLen(src) - cursor; tail > 0 {
		posMap.AddCopy(byteLen(out), cursor, tail)
		out = append(out, src[cursor:]...)
	}
	return out, posMap
}

func byteLen(b []byte) uint32 {
	n, err := safecast.Conv[uint32](len(b))
	if err != nil {
		panic(fmt.Errorf("buffer length overflow: %w", err))
	}
	return n
}

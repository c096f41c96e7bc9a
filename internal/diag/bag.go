package diag

import (
	"fmt"
	"math"
	"sort"
)

// Bag collects diagnostics up to a fixed cap.
type Bag struct {
	items []Diagnostic
	max   uint16
}

// NewBag creates a Bag holding at most max diagnostics. Out-of-range values
// are clamped to the representable cap instead of wrapping.
func NewBag(max int) *Bag {
	if max < 0 {
		max = 0
	}
	if max > math.MaxUint16 {
		max = math.MaxUint16
	}
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   uint16(max),
	}
}

// Add appends a diagnostic, honoring the cap. Returns false when dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

func (b *Bag) Len() int {
	return len(b.items)
}

// HasErrors reports whether any diagnostic is SevError or above.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any diagnostic is SevWarning or above.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// Items returns the collected diagnostics. The slice aliases the Bag's
// internal storage; callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends all diagnostics from other, growing the cap if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if newTotal > math.MaxUint16 {
		newTotal = math.MaxUint16
	}
	if uint16(newTotal) > b.max {
		b.max = uint16(newTotal)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, start, end, severity (desc), code for a
// stable, deterministic output order.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup removes duplicates by (code, primary span).
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	kept := b.items[:0]
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s", d.Code.ID(), d.Primary.String())
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, d)
	}
	b.items = kept
}

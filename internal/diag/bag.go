package diag

import (
	"cmp"
	"slices"
)

// Bag holds the diagnostics of one file up to a limit. Diagnostics over the
// limit are counted, not kept.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
	// dropped errors still decide HasErrors
	droppedErrs int
}

// NewBag keeps at most limit diagnostics; limit <= 0 keeps all of them.
func NewBag(limit int) *Bag {
	return &Bag{limit: max(limit, 0)}
}

// Add keeps d unless the bag is full and reports whether it was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if b.limit > 0 && len(b.items) >= b.limit {
		b.dropped++
		if d.Severity >= SevError {
			b.droppedErrs++
		}
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Force keeps d even when the bag is full. Used for output the user asked for
// explicitly, such as timings.
func (b *Bag) Force(d Diagnostic) {
	b.items = append(b.items, d)
}

func (b *Bag) Len() int { return len(b.items) }

// Dropped returns how many diagnostics Add refused.
func (b *Bag) Dropped() int { return b.dropped }

// Count returns the number of kept diagnostics at severity sev or above.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether an error was added, kept or not.
func (b *Bag) HasErrors() bool {
	return b.droppedErrs > 0 || b.Count(SevError) > 0
}

// Items returns the kept diagnostics; the slice is shared with the bag.
func (b *Bag) Items() []Diagnostic { return b.items }

// Sort orders by file and position, errors before warnings on the same span.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

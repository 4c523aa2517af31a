package search

import (
	"errors"
	"slices"
	"strings"

	"faultline/internal/document"
	"faultline/internal/oracle"
)

var errEmptyFrontier = errors.New("search: pop from empty frontier")

// Frontier holds the lines nobody has claimed yet and the candidate blocks.
//
// Unvisited lines are ordered by (indent desc, index asc). Empty lines are
// never unvisited: they carry no code and count as explained from the start.
// Active blocks are sorted ascending by Compare; the last one is expanded next.
type Frontier struct {
	doc        *document.Document
	oracle     oracle.Oracle
	prioritize func(*Block) int

	order   []*document.Line
	cursor  int
	visited []bool

	active []*Block

	checkNext bool
	checks    int
}

// NewFrontier indexes the visible non-empty lines of doc.
func NewFrontier(doc *document.Document, o oracle.Oracle, prioritize func(*Block) int) *Frontier {
	f := &Frontier{
		doc:        doc,
		oracle:     o,
		prioritize: prioritize,
		visited:    make([]bool, doc.Len()),
		checkNext:  true,
	}
	for _, l := range doc.Lines() {
		if l.Empty() || l.Hidden() {
			f.visited[l.Index] = true
			continue
		}
		f.order = append(f.order, l)
	}
	slices.SortStableFunc(f.order, func(a, b *document.Line) int {
		if a.Indent() != b.Indent() {
			return b.Indent() - a.Indent()
		}
		return a.Index - b.Index
	})
	return f
}

// NextIndentLine peeks the most indented, earliest unvisited line.
func (f *Frontier) NextIndentLine() *document.Line {
	for f.cursor < len(f.order) && f.visited[f.order[f.cursor].Index] {
		f.cursor++
	}
	if f.cursor == len(f.order) {
		return nil
	}
	return f.order[f.cursor]
}

// Visited reports whether line i was claimed or explained.
func (f *Frontier) Visited(i int) bool { return f.visited[i] }

// Unvisited returns the unclaimed lines in frontier order.
func (f *Frontier) Unvisited() []*document.Line {
	var out []*document.Line
	for _, l := range f.order[f.cursor:] {
		if !f.visited[l.Index] {
			out = append(out, l)
		}
	}
	return out
}

// Active returns the candidate blocks in ascending order. The slice must not be modified.
func (f *Frontier) Active() []*Block { return f.active }

// Checks is the number of global validity checks that reached the oracle.
func (f *Frontier) Checks() int { return f.checks }

// Expand reports whether the top block should grow before new lines are seeded:
// it is at least as indented as the next unvisited line.
func (f *Frontier) Expand() bool {
	if len(f.active) == 0 {
		return false
	}
	next := f.NextIndentLine()
	if next == nil {
		return true
	}
	return f.active[len(f.active)-1].CurrentIndent() >= next.Indent()
}

// Push claims the lines of b, evicts every active block inside b and inserts b
// in order. A block not known to be valid arms the next global check.
func (f *Frontier) Push(b *Block) {
	for _, l := range b.Lines() {
		f.visited[l.Index] = true
	}
	if f.prioritize != nil {
		b.priority = f.prioritize(b)
	}
	f.active = slices.DeleteFunc(f.active, func(a *Block) bool { return b.Contains(a) })
	i, _ := slices.BinarySearchFunc(f.active, b, Compare)
	f.active = slices.Insert(f.active, i, b)

	if valid, known := b.KnownValid(); !known || !valid {
		f.checkNext = true
	}
}

// Pop removes and returns the highest block.
func (f *Frontier) Pop() (*Block, error) {
	if len(f.active) == 0 {
		return nil, errEmptyFrontier
	}
	b := f.active[len(f.active)-1]
	f.active = f.active[:len(f.active)-1]
	return b, nil
}

// ForceCheck makes the next HoldsAllSyntaxErrors consult the oracle.
func (f *Frontier) ForceCheck() { f.checkNext = true }

// HoldsAllSyntaxErrors reports whether the visible text outside the active
// blocks parses (or is blank). The oracle is only consulted when an invalid
// block arrived since the last check; otherwise the answer is false.
func (f *Frontier) HoldsAllSyntaxErrors() (bool, error) {
	if !f.checkNext {
		return false, nil
	}
	f.checkNext = false
	return f.holdsWithout(f.active)
}

// holdsWithout checks the visible text with the lines of blocks removed.
func (f *Frontier) holdsWithout(blocks []*Block) (bool, error) {
	mask := make([]bool, f.doc.Len())
	for _, b := range blocks {
		for i := b.Start(); i <= b.End(); i++ {
			mask[i] = true
		}
	}
	text := f.doc.VisibleText(func(l *document.Line) bool { return mask[l.Index] })
	if strings.TrimSpace(text) == "" {
		return true, nil
	}
	f.checks++
	ok, err := f.oracle.Valid(text)
	if err != nil {
		if !oracle.IsFailure(err) {
			err = &oracle.Failure{Oracle: "oracle", Err: err}
		}
		return false, err
	}
	return ok, nil
}

// DetectInvalidBlocks returns the smallest combination of invalid active
// blocks whose removal alone makes the document valid. Combinations are tried
// by size, then in lexicographic order over the active order, so the first hit
// is deterministic. When none works within maxChecks oracle calls, every
// invalid block is returned.
func (f *Frontier) DetectInvalidBlocks(maxChecks int) ([]*Block, bool, error) {
	var invalid []*Block
	for _, b := range f.active {
		ok, err := b.Valid(f.oracle)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			invalid = append(invalid, b)
		}
	}

	budget := maxChecks
	for size := 1; size <= len(invalid); size++ {
		var (
			found  []*Block
			err    error
			picked = make([]*Block, size)
		)
		combinations(len(invalid), size, func(idx []int) bool {
			if budget <= 0 {
				return false
			}
			budget--
			for i, j := range idx {
				picked[i] = invalid[j]
			}
			var ok bool
			ok, err = f.holdsWithout(picked)
			if err != nil {
				return false
			}
			if ok {
				found = slices.Clone(picked)
				return false
			}
			return true
		})
		if err != nil {
			return nil, false, err
		}
		if found != nil {
			return found, true, nil
		}
		if budget <= 0 {
			break
		}
	}
	return invalid, false, nil
}

// combinations calls yield with every k-subset of [0, n) in lexicographic
// order until yield returns false.
func combinations(n, k int, yield func([]int) bool) {
	if k <= 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		if !yield(idx) {
			return
		}
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

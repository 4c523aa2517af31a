package search

import (
	"cmp"
	"fmt"
	"strings"

	"faultline/internal/document"
	"faultline/internal/oracle"
	"faultline/internal/source"
)

// Block is a contiguous, non-empty run of document lines.
//
// Blocks are values: expansion creates a new Block instead of changing a span.
// The indent and validity caches are written at most once, by whichever
// structure owns the block at that moment (a local during expansion, then the
// frontier). Blocks are never handed to another goroutine.
type Block struct {
	lines    []*document.Line
	priority int

	indent     int
	indentDone bool

	valid     bool
	validDone bool
}

// NewBlock wraps lines, which must be non-empty and contiguous by index.
func NewBlock(lines []*document.Line) *Block {
	if len(lines) == 0 {
		panic("search: empty block")
	}
	return &Block{lines: lines}
}

// Lines returns the block lines in order.
func (b *Block) Lines() []*document.Line { return b.lines }

// Start is the index of the first line.
func (b *Block) Start() int { return b.lines[0].Index }

// End is the index of the last line.
func (b *Block) End() int { return b.lines[len(b.lines)-1].Index }

// Len is the number of lines.
func (b *Block) Len() int { return len(b.lines) }

// Priority is the key assigned by the frontier.
func (b *Block) Priority() int { return b.priority }

// Contains reports whether o's span lies within b's span.
func (b *Block) Contains(o *Block) bool {
	return b.Start() <= o.Start() && o.End() <= b.End()
}

// Covers reports whether line index i lies within the block.
func (b *Block) Covers(i int) bool {
	return b.Start() <= i && i <= b.End()
}

// CurrentIndent is the smallest indent of the non-empty visible lines.
// When every non-empty line is hidden the hidden ones count; 0 when all are empty.
func (b *Block) CurrentIndent() int {
	if b.indentDone {
		return b.indent
	}
	visible, hidden := -1, -1
	for _, l := range b.lines {
		if l.Empty() {
			continue
		}
		if hidden < 0 || l.Indent() < hidden {
			hidden = l.Indent()
		}
		if l.Visible() && (visible < 0 || l.Indent() < visible) {
			visible = l.Indent()
		}
	}
	switch {
	case visible >= 0:
		b.indent = visible
	case hidden >= 0:
		b.indent = hidden
	}
	b.indentDone = true
	return b.indent
}

// Explained reports whether every line is hidden or empty.
func (b *Block) Explained() bool {
	for _, l := range b.lines {
		if l.Visible() && !l.Empty() {
			return false
		}
	}
	return true
}

// Valid asks o whether the block text parses, once per block. A block whose
// lines are all hidden or empty is valid without asking. Oracle errors are
// returned as *oracle.Failure and never cached.
func (b *Block) Valid(o oracle.Oracle) (bool, error) {
	if b.validDone {
		return b.valid, nil
	}
	if b.Explained() {
		b.valid, b.validDone = true, true
		return true, nil
	}
	ok, err := o.Valid(b.Text())
	if err != nil {
		if !oracle.IsFailure(err) {
			err = &oracle.Failure{Oracle: fmt.Sprintf("%T", o), Err: err}
		}
		return false, fmt.Errorf("validate %s: %w", b, err)
	}
	b.valid, b.validDone = ok, true
	return ok, nil
}

// KnownValid returns the cached verdict, if there is one.
func (b *Block) KnownValid() (valid, known bool) {
	return b.valid, b.validDone
}

// Text concatenates the original text of every line, hidden ones included.
func (b *Block) Text() string {
	var sb strings.Builder
	for _, l := range b.lines {
		sb.WriteString(l.Text())
	}
	return sb.String()
}

// Span is the byte range of Text in the source.
func (b *Block) Span() source.Span {
	return b.lines[0].Span().Cover(b.lines[len(b.lines)-1].Span())
}

// Balance sums the balance of every line.
func (b *Block) Balance() document.Balance {
	var total document.Balance
	for _, l := range b.lines {
		total = total.Add(l.Balance())
	}
	return total
}

// Hide marks every line as explained.
func (b *Block) Hide() {
	for _, l := range b.lines {
		l.Hide()
	}
}

// String renders the 1-based line range.
func (b *Block) String() string {
	if b.Len() == 1 {
		return fmt.Sprintf("line %d", b.Start()+1)
	}
	return fmt.Sprintf("lines %d-%d", b.Start()+1, b.End()+1)
}

// Compare orders blocks by priority, then current indent, then start line.
// The greatest block is expanded next.
func Compare(a, b *Block) int {
	return cmp.Or(
		cmp.Compare(a.priority, b.priority),
		cmp.Compare(a.CurrentIndent(), b.CurrentIndent()),
		cmp.Compare(a.Start(), b.Start()),
	)
}

package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"faultline/internal/document"
	"faultline/internal/source"
)

// Range is an inclusive range of 0-based line indices.
type Range struct {
	First, Last int
}

// CheckCoverage verifies the frontier partition: every line is either
// unvisited or explained (inside a candidate range, hidden, or empty), never
// both and never neither.
func CheckCoverage(lines []*document.Line, unvisited func(i int) bool, active []Range) error {
	covered := make([]bool, len(lines))
	for _, r := range active {
		if r.First < 0 || r.Last >= len(lines) || r.First > r.Last {
			return fmt.Errorf("range %d-%d outside document of %d lines", r.First, r.Last, len(lines))
		}
		for i := r.First; i <= r.Last; i++ {
			covered[i] = true
		}
	}
	for i, l := range lines {
		explained := covered[i] || l.Hidden() || l.Empty()
		open := unvisited(i)
		switch {
		case open && explained:
			return fmt.Errorf("line %d is unvisited and explained", i+1)
		case !open && !explained:
			return fmt.Errorf("line %d is neither unvisited nor explained", i+1)
		}
	}
	return nil
}

// CheckLineSpans verifies that the document lines tile the file content:
// spans are contiguous, inside the content, and each span holds the line text.
func CheckLineSpans(doc *document.Document) error {
	content := doc.File().Content
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	var next uint32
	for _, l := range doc.Lines() {
		sp := l.Span()
		if sp.Start != next {
			return fmt.Errorf("line %d starts at %d, want %d", l.Index+1, sp.Start, next)
		}
		if sp.End > size || sp.End < sp.Start {
			return fmt.Errorf("line %d span %v outside content of %d bytes", l.Index+1, sp, size)
		}
		if got := string(content[sp.Start:sp.End]); got != l.Text() {
			return fmt.Errorf("line %d span text %q != line text %q", l.Index+1, got, l.Text())
		}
		next = sp.End
	}
	if next != size {
		return fmt.Errorf("lines end at %d, content has %d bytes", next, size)
	}
	return nil
}

// CheckRoundTrip verifies that text is exactly the content under span.
func CheckRoundTrip(file *source.File, span source.Span, text string) error {
	size, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if span.End > size || span.Start > span.End {
		return fmt.Errorf("span %v outside content of %d bytes", span, size)
	}
	if got := string(file.Content[span.Start:span.End]); got != text {
		return fmt.Errorf("span %v holds %q, block text is %q", span, got, text)
	}
	return nil
}

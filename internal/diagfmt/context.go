package diagfmt

import (
	"slices"
	"strings"

	"faultline/internal/document"
)

// CaptureContext returns the sorted indices of the lines worth printing for the
// invalid lines first..last: the block itself, every enclosing opener above it
// with a strictly smaller indent, and the line that closes each such opener.
func CaptureContext(doc *document.Document, first, last int) []int {
	if doc.Len() == 0 {
		return nil
	}
	first = max(first, 0)
	last = min(last, doc.Len()-1)

	seen := make(map[int]bool)
	var out []int
	add := func(i int) {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}

	indent := -1
	for i := first; i <= last; i++ {
		l := doc.Line(i)
		if l.Continuation() || strings.TrimSpace(l.Text()) == "" {
			continue
		}
		add(i)
		if !l.Empty() && (indent < 0 || l.Indent() < indent) {
			indent = l.Indent()
		}
	}
	if indent <= 0 {
		slices.Sort(out)
		return out
	}

	for i := first - 1; i >= 0 && indent > 0; i-- {
		l := doc.Line(i)
		if l.Empty() || l.Indent() >= indent {
			continue
		}
		if !opens(l) {
			continue
		}
		indent = l.Indent()
		add(i)
		if c, ok := closerFor(doc, last+1, indent); ok {
			add(c)
		}
	}
	slices.Sort(out)
	return out
}

func opens(l *document.Line) bool {
	return l.Balance().Leaning() == document.LeanLeft
}

// closerFor finds the first code line at or below from with exactly indent that
// closes something. A line indented less ends the search.
func closerFor(doc *document.Document, from, indent int) (int, bool) {
	for i := from; i < doc.Len(); i++ {
		l := doc.Line(i)
		if l.Empty() {
			continue
		}
		switch {
		case l.Indent() < indent:
			return 0, false
		case l.Indent() == indent:
			lean := l.Balance().Leaning()
			return i, lean == document.LeanRight || lean == document.LeanBoth
		}
	}
	return 0, false
}

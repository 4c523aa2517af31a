package search

import "faultline/internal/document"

// Scanner grows a span of lines around a block while a predicate holds.
//
// Lines matched by a skip predicate are passed over and included without
// stopping the scan. With StopAfterKw the upward scan stops right after the
// line where openers outnumber closers (downward: closers outnumber openers),
// so a scan never swallows a whole sibling block.
//
// With StopAtHidden a hidden line that starts a hidden block below the span
// (an opener) or ends one above it (a closer) is a fence: skipped lines stop
// there instead of carrying the span across an already valid sibling.
//
// Changes are tentative until Commit; Stash drops them.
type Scanner struct {
	lines []*document.Line
	orig  *Block

	before, after int
	history       [][2]int

	skips       []func(*document.Line) bool
	stopAfterKw bool
	fenced      bool
	target      int
}

// NewScanner starts a scan at the span of b.
func NewScanner(lines []*document.Line, b *Block) *Scanner {
	s := &Scanner{lines: lines, orig: b, before: b.Start(), after: b.End()}
	s.history = append(s.history, [2]int{s.before, s.after})
	return s
}

// Skip passes over lines matching pred.
func (s *Scanner) Skip(pred func(*document.Line) bool) *Scanner {
	s.skips = append(s.skips, pred)
	return s
}

// SkipEmpty passes over empty lines.
func (s *Scanner) SkipEmpty() *Scanner { return s.Skip((*document.Line).Empty) }

// SkipHidden passes over hidden lines.
func (s *Scanner) SkipHidden() *Scanner { return s.Skip((*document.Line).Hidden) }

// StopAfterKw enables the keyword stop rule.
func (s *Scanner) StopAfterKw() *Scanner {
	s.stopAfterKw = true
	return s
}

// StopAtHidden enables the hidden block fence.
func (s *Scanner) StopAtHidden() *Scanner {
	s.fenced = true
	return s
}

func (s *Scanner) skipped(l *document.Line) bool {
	for _, p := range s.skips {
		if p(l) {
			return true
		}
	}
	return false
}

// ScanWhile scans up, then down.
func (s *Scanner) ScanWhile(pred func(*document.Line) bool) *Scanner {
	return s.ScanUpWhile(pred).ScanDownWhile(pred)
}

// ScanUpWhile extends the span upwards; index 0 ends the scan.
func (s *Scanner) ScanUpWhile(pred func(*document.Line) bool) *Scanner {
	stopNext := false
	kw, ends := 0, 0
	for i := s.before - 1; i >= 0 && !stopNext; i-- {
		l := s.lines[i]
		if s.fenced && l.Hidden() && l.Closer() {
			break
		}
		if s.skipped(l) {
			s.before = i
			continue
		}
		if s.stopAfterKw {
			if l.Opener() {
				kw++
			}
			if l.Closer() {
				ends++
			}
			stopNext = kw > ends
		}
		if !pred(l) {
			break
		}
		s.before = i
	}
	return s
}

// ScanDownWhile extends the span downwards; the last line ends the scan.
func (s *Scanner) ScanDownWhile(pred func(*document.Line) bool) *Scanner {
	stopNext := false
	kw, ends := 0, 0
	for i := s.after + 1; i < len(s.lines) && !stopNext; i++ {
		l := s.lines[i]
		if s.fenced && l.Hidden() && l.Opener() {
			break
		}
		if s.skipped(l) {
			s.after = i
			continue
		}
		if s.stopAfterKw {
			if l.Opener() {
				kw++
			}
			if l.Closer() {
				ends++
			}
			stopNext = ends > kw
		}
		if !pred(l) {
			break
		}
		s.after = i
	}
	return s
}

// ScanNeighborsNotEmpty takes the contiguous non-empty lines at or above the
// indent of the starting block.
func (s *Scanner) ScanNeighborsNotEmpty() *Scanner {
	s.target = s.orig.CurrentIndent()
	return s.ScanWhile(func(l *document.Line) bool {
		return l.NotEmpty() && l.Indent() >= s.target
	})
}

// ScanAdjacentIndent takes the lines at or above the smaller indent of the two
// lines touching the span; a document edge counts as indent 0.
func (s *Scanner) ScanAdjacentIndent() *Scanner {
	up, down := 0, 0
	if l := s.NextUp(); l != nil {
		up = l.Indent()
	}
	if l := s.NextDown(); l != nil {
		down = l.Indent()
	}
	s.target = min(up, down)
	return s.ScanWhile(func(l *document.Line) bool {
		return l.NotEmpty() && l.Indent() >= s.target
	})
}

// Target is the indent used by the last neighbor or adjacent-indent scan.
func (s *Scanner) Target() int { return s.target }

// TakeUp adds the line above the span, if any.
func (s *Scanner) TakeUp() bool {
	if s.before == 0 {
		return false
	}
	s.before--
	return true
}

// TakeDown adds the line below the span, if any.
func (s *Scanner) TakeDown() bool {
	if s.after >= len(s.lines)-1 {
		return false
	}
	s.after++
	return true
}

// Commit records the current span.
func (s *Scanner) Commit() *Scanner {
	last := s.history[len(s.history)-1]
	if last != [2]int{s.before, s.after} {
		s.history = append(s.history, [2]int{s.before, s.after})
	}
	return s
}

// Stash drops changes made since the last Commit.
func (s *Scanner) Stash() *Scanner {
	last := s.history[len(s.history)-1]
	s.before, s.after = last[0], last[1]
	return s
}

// Changed reports whether the span differs from the starting block.
func (s *Scanner) Changed() bool {
	return s.before != s.orig.Start() || s.after != s.orig.End()
}

// Before is the index of the first line of the span.
func (s *Scanner) Before() int { return s.before }

// After is the index of the last line of the span.
func (s *Scanner) After() int { return s.after }

// NextUp is the line right above the span, nil at the document start.
func (s *Scanner) NextUp() *document.Line {
	if s.before == 0 {
		return nil
	}
	return s.lines[s.before-1]
}

// NextDown is the line right below the span, nil at the document end.
func (s *Scanner) NextDown() *document.Line {
	if s.after+1 >= len(s.lines) {
		return nil
	}
	return s.lines[s.after+1]
}

// Lines returns the lines of the current span.
func (s *Scanner) Lines() []*document.Line { return s.lines[s.before : s.after+1] }

// Block materializes the current span. The starting block is returned as is
// when nothing changed, so its caches survive.
func (s *Scanner) Block() *Block {
	if !s.Changed() {
		return s.orig
	}
	return NewBlock(s.Lines())
}

// Balance sums the balance of the current span.
func (s *Scanner) Balance() document.Balance {
	var total document.Balance
	for _, l := range s.Lines() {
		total = total.Add(l.Balance())
	}
	return total
}

// CapturedVisible reports whether the span holds a visible non-empty line.
// A span of hidden or empty lines only is a no-op capture.
func (s *Scanner) CapturedVisible() bool {
	for _, l := range s.Lines() {
		if l.Visible() && l.NotEmpty() {
			return true
		}
	}
	return false
}

package search

import (
	"log/slog"

	"faultline/internal/document"
	"faultline/internal/oracle"
)

// Expander grows a block by one step: first through its neighbors at the same
// indentation, then out to the enclosing indentation level.
type Expander struct {
	lines  []*document.Line
	oracle oracle.Oracle
	logger *slog.Logger
	limit  int

	stalls int
}

// NewExpander creates an expander over lines. The directional balancing loop
// is capped at twice the number of lines until SetLimit says otherwise.
func NewExpander(lines []*document.Line, o oracle.Oracle, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Expander{lines: lines, oracle: o, logger: logger, limit: 2 * len(lines)}
}

// SetLimit caps the balancing loop at n steps. n <= 0 keeps the current cap.
func (e *Expander) SetLimit(n int) {
	if n > 0 {
		e.limit = n
	}
}

// Stalls is the number of times the balancing loop hit its cap.
func (e *Expander) Stalls() int { return e.stalls }

// Expand returns the next, larger block. When the block sits between both
// document edges it is returned unchanged.
//
// A step first keeps out the hidden sibling blocks next to b, so a block
// missing its `end` does not absorb the valid methods around it. Only when
// that moves nothing are hidden lines crossed.
func (e *Expander) Expand(b *Block) (*Block, error) {
	next, err := e.step(b, true)
	if err != nil || next != b {
		return next, err
	}
	return e.step(b, false)
}

func (e *Expander) step(b *Block, fenced bool) (*Block, error) {
	next, err := e.expandNeighbors(b, fenced)
	if err != nil || next != nil {
		return next, err
	}
	return e.expandIndent(b, fenced)
}

func (e *Expander) scanner(b *Block, fenced bool) *Scanner {
	sc := NewScanner(e.lines, b).
		SkipHidden().
		StopAfterKw()
	if fenced {
		sc.StopAtHidden()
	}
	return sc
}

// expandNeighbors takes the surrounding lines at the block's own indentation
// and the empty lines next to them. It returns nil when the span did not move.
func (e *Expander) expandNeighbors(b *Block, fenced bool) (*Block, error) {
	sc := e.scanner(b, fenced).ScanNeighborsNotEmpty()
	sc.ScanWhile((*document.Line).Empty)
	sc.Commit()

	if err := e.balance(sc, b.CurrentIndent()); err != nil {
		return nil, err
	}
	if !sc.Changed() {
		return nil, nil
	}
	return sc.Block(), nil
}

// expandIndent steps out to the indentation of the enclosing lines.
func (e *Expander) expandIndent(b *Block, fenced bool) (*Block, error) {
	sc := e.scanner(b, fenced).ScanAdjacentIndent()
	sc.Commit()

	if err := e.balance(sc, sc.Target()); err != nil {
		return nil, err
	}
	return sc.Block(), nil
}

// balance pulls in the lines a one-sided span is missing: a span leaning left
// lacks closers below it, one leaning right lacks openers above it. A line is
// taken only when it sits at indent >= target and makes the span less
// unbalanced. When the grown span turns ambiguous (leans both ways) the oracle
// decides, and an invalid result rolls back to the smaller span.
func (e *Expander) balance(sc *Scanner, target int) error {
	for i := 0; ; i++ {
		if i >= e.limit {
			e.stalls++
			e.logger.Warn("block expansion stalled",
				"err", ErrHeuristicStall,
				"first", sc.Before()+1,
				"last", sc.After()+1,
				"iterations", i)
			return nil
		}

		var lean document.Leaning
		var next *document.Line
		switch sc.Balance().Leaning() {
		case document.LeanLeft:
			lean = document.LeanLeft
			sc.ScanDownWhile(explained)
			next = sc.NextDown()
		case document.LeanRight:
			lean = document.LeanRight
			sc.ScanUpWhile(explained)
			next = sc.NextUp()
		default:
			return nil
		}
		sc.Commit()

		cur := sc.Balance()
		if next == nil || next.Empty() || next.Hidden() || next.Indent() < target {
			return nil
		}
		grown := cur.Add(next.Balance())
		if grown.Abs() >= cur.Abs() {
			return nil
		}
		if lean == document.LeanLeft {
			sc.TakeDown()
		} else {
			sc.TakeUp()
		}
		if grown.Leaning() == document.LeanBoth {
			ok, err := NewBlock(sc.Lines()).Valid(e.oracle)
			if err != nil {
				return err
			}
			if !ok {
				sc.Stash()
				return nil
			}
		}
		sc.Commit()
	}
}

func explained(l *document.Line) bool {
	return l.Empty() || l.Hidden()
}

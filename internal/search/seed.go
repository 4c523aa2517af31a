package search

import (
	"faultline/internal/document"
	"faultline/internal/oracle"
)

// Seeder creates the first blocks for a line nobody has claimed yet.
type Seeder struct {
	lines   []*document.Line
	oracle  oracle.Oracle
	claimed func(*document.Line) bool
}

// NewSeeder creates a seeder. claimed reports lines that already belong to a
// candidate block; the flat run never crosses them.
func NewSeeder(lines []*document.Line, o oracle.Oracle, claimed func(*document.Line) bool) *Seeder {
	if claimed == nil {
		claimed = func(*document.Line) bool { return false }
	}
	return &Seeder{lines: lines, oracle: o, claimed: claimed}
}

// Seed scans the flat run of lines around line at its indent or deeper,
// passing over empty and hidden lines. A short or valid run is one block.
// Otherwise the run is cut from its end: each block starts with the last
// remaining line and takes lines above it while it is still invalid, which
// keeps a broken trailing line away from a long valid prefix.
// Blocks are returned bottom-up and cover the whole run.
func (s *Seeder) Seed(line *document.Line) ([]*Block, error) {
	indent := line.Indent()
	run := NewScanner(s.lines, NewBlock(s.lines[line.Index:line.Index+1])).
		SkipEmpty().
		SkipHidden().
		ScanWhile(func(l *document.Line) bool {
			return l.Indent() >= indent && !s.claimed(l)
		}).
		Lines()

	whole := NewBlock(run)
	if len(run) <= 2 {
		return []*Block{whole}, nil
	}
	ok, err := whole.Valid(s.oracle)
	if err != nil {
		return nil, err
	}
	if ok {
		return []*Block{whole}, nil
	}

	var out []*Block
	end := len(run)
	for end > 0 {
		start := end - 1
		b := NewBlock(run[start:end])
		for {
			valid, err := b.Valid(s.oracle)
			if err != nil {
				return nil, err
			}
			if valid || start == 0 {
				break
			}
			start--
			b = NewBlock(run[start:end])
		}
		out = append(out, b)
		end = start
	}
	return out, nil
}

package document

import (
	"fmt"

	"faultline/internal/token"
)

// Leaning is the direction a span of code leans toward.
type Leaning uint8

const (
	// LeanEqual: every pair is matched.
	LeanEqual Leaning = iota
	// LeanLeft: openers without closers; the span needs lines below.
	LeanLeft
	// LeanRight: closers without openers; the span needs lines above.
	LeanRight
	// LeanBoth: unmatched in both directions.
	LeanBoth
)

func (l Leaning) String() string {
	switch l {
	case LeanLeft:
		return "left"
	case LeanRight:
		return "right"
	case LeanBoth:
		return "both"
	default:
		return "equal"
	}
}

// Balance counts unmatched pairs: positive components are unclosed openers,
// negative ones are unopened closers.
type Balance struct {
	Curly   int
	Square  int
	Paren   int
	Keyword int
}

// Add merges two adjacent spans.
func (b Balance) Add(o Balance) Balance {
	return Balance{
		Curly:   b.Curly + o.Curly,
		Square:  b.Square + o.Square,
		Paren:   b.Paren + o.Paren,
		Keyword: b.Keyword + o.Keyword,
	}
}

func (b Balance) components() [4]int {
	return [4]int{b.Curly, b.Square, b.Paren, b.Keyword}
}

// Leaning classifies the sign pattern of the vector.
func (b Balance) Leaning() Leaning {
	var pos, neg bool
	for _, c := range b.components() {
		switch {
		case c > 0:
			pos = true
		case c < 0:
			neg = true
		}
	}
	switch {
	case pos && neg:
		return LeanBoth
	case pos:
		return LeanLeft
	case neg:
		return LeanRight
	default:
		return LeanEqual
	}
}

// Abs is the total number of unmatched delimiters.
func (b Balance) Abs() int {
	n := 0
	for _, c := range b.components() {
		if c < 0 {
			c = -c
		}
		n += c
	}
	return n
}

func (b Balance) String() string {
	return fmt.Sprintf("{}%+d []%+d ()%+d kw%+d", b.Curly, b.Square, b.Paren, b.Keyword)
}

// BalanceOf sums the structural contribution of toks.
func BalanceOf(toks []token.Token) Balance {
	var b Balance
	for _, tok := range toks {
		switch tok.Kind {
		case token.LBrace:
			b.Curly++
		case token.RBrace:
			b.Curly--
		case token.LBracket:
			b.Square++
		case token.RBracket:
			b.Square--
		case token.LParen:
			b.Paren++
		case token.RParen:
			b.Paren--
		}
		switch tok.Role {
		case token.RoleOpener:
			b.Keyword++
		case token.RoleCloser:
			b.Keyword--
		}
	}
	return b
}

package document

import (
	"faultline/internal/source"
	"faultline/internal/token"
)

// Line is one physical line of a document. Everything except visibility is
// fixed when the document is built.
type Line struct {
	Index int // 0-based, stable

	text         string
	indent       int
	empty        bool
	comment      bool
	continuation bool
	balance      Balance
	tokens       []token.Token
	span         source.Span
	hidden       bool
}

// Text returns the line text including its terminator. A group head carries
// the text of its continuation lines; the followers return "".
func (l *Line) Text() string { return l.text }

// Indent is the count of leading blanks; 0 for empty lines.
func (l *Line) Indent() int { return l.indent }

// Empty reports whether the line has no code (blank, comment or continuation).
func (l *Line) Empty() bool { return l.empty }

// Comment reports whether the line holds only comments.
func (l *Line) Comment() bool { return l.comment }

// Continuation reports whether the line was folded into the line above.
func (l *Line) Continuation() bool { return l.continuation }

// Balance returns the pair counts of the line's tokens.
func (l *Line) Balance() Balance { return l.balance }

// Opener reports more block keywords than `end` on the line.
func (l *Line) Opener() bool { return l.balance.Keyword > 0 }

// Closer reports more `end` than block keywords on the line.
func (l *Line) Closer() bool { return l.balance.Keyword < 0 }

// Tokens returns the tokens that start on this logical line.
func (l *Line) Tokens() []token.Token { return l.tokens }

// Span is the byte range of Text in the source.
func (l *Line) Span() source.Span { return l.span }

// Visible reports whether the line still takes part in the search.
func (l *Line) Visible() bool { return !l.hidden }

// Hidden is the negation of Visible.
func (l *Line) Hidden() bool { return l.hidden }

// Hide marks the line as already explained by a valid block.
func (l *Line) Hide() { l.hidden = true }

// Show restores visibility.
func (l *Line) Show() { l.hidden = false }

// NotEmpty is Empty negated, for scan predicates.
func (l *Line) NotEmpty() bool { return !l.empty }

// VisibleText is Text for visible lines and "" for hidden ones.
func (l *Line) VisibleText() string {
	if l.hidden {
		return ""
	}
	return l.text
}

func indentOf(text string) int {
	n := 0
	for n < len(text) && (text[n] == ' ' || text[n] == '\t') {
		n++
	}
	return n
}

func blank(text string) bool {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\r', '\n', '\f', '\v':
		default:
			return false
		}
	}
	return true
}

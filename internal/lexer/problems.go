package lexer

import "faultline/internal/source"

// ProblemKind classifies what the lexer could not make sense of.
type ProblemKind string

const (
	ProblemUnterminatedString  ProblemKind = "unterminated-string"
	ProblemUnterminatedRegexp  ProblemKind = "unterminated-regexp"
	ProblemUnterminatedHeredoc ProblemKind = "unterminated-heredoc"
	ProblemUnterminatedComment ProblemKind = "unterminated-comment"
	ProblemUnexpectedChar      ProblemKind = "unexpected-char"
)

// Problem is a lexical error. Lexing goes on after one: the token is still
// emitted, flagged or as token.Invalid.
type Problem struct {
	Kind ProblemKind
	Span source.Span
	Msg  string
}

// Options tune a single Lex call.
type Options struct {
	// MaxProblems stops recording problems after that many; 0 records all.
	// The oracle only needs the first one.
	MaxProblems int
}

func (lx *Lexer) report(kind ProblemKind, sp source.Span, msg string) {
	if lx.opts.MaxProblems > 0 && len(lx.problems) >= lx.opts.MaxProblems {
		return
	}
	lx.problems = append(lx.problems, Problem{Kind: kind, Span: sp, Msg: msg})
}

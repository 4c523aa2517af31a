// Package oracle answers the only question the search trusts: is this text
// syntactically valid? Implementations range from the built-in structural
// validator to an external `ruby -c` and the tree-sitter Ruby grammar.
package oracle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCGO is returned when the tree-sitter oracle is unavailable due to missing CGO.
var ErrNoCGO = errors.New("tree-sitter oracle requires CGO")

// Oracle decides whether src parses. It must be deterministic for a given src.
// An error means the oracle itself failed; callers must not read it as "invalid".
type Oracle interface {
	Valid(src string) (bool, error)
}

// Func adapts a plain function to Oracle.
type Func func(src string) (bool, error)

// Valid calls f.
func (f Func) Valid(src string) (bool, error) { return f(src) }

// Problem is one parser complaint.
type Problem struct {
	Line int // 1-based, 0 when unknown
	Msg  string
}

func (p Problem) String() string {
	if p.Line == 0 {
		return p.Msg
	}
	return fmt.Sprintf("%d: %s", p.Line, p.Msg)
}

// Report is a validity verdict with the parser's own explanation.
type Report struct {
	Valid    bool
	Problems []Problem
}

// Messages returns the problems as plain strings.
func (r Report) Messages() []string {
	out := make([]string, 0, len(r.Problems))
	for _, p := range r.Problems {
		out = append(out, p.String())
	}
	return out
}

// Explainer is implemented by oracles that can say why text is invalid.
type Explainer interface {
	Check(src string) (Report, error)
}

// Failure wraps an error raised by an oracle implementation.
type Failure struct {
	Oracle string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("oracle %s failed: %v", f.Oracle, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// IsFailure reports whether err came from an oracle implementation.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// ParseError is returned by Require when a file does not parse. Hosts that load
// files through a Loader return it so the load hook can diagnose the file.
type ParseError struct {
	Path     string
	Problems []Problem
}

func (e *ParseError) Error() string {
	if len(e.Problems) == 0 {
		return e.Path + ": syntax error"
	}
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.String())
	}
	return e.Path + ": " + strings.Join(msgs, "; ")
}

// Require checks src with o and returns a *ParseError when it is invalid.
func Require(o Oracle, path, src string) error {
	if ex, ok := o.(Explainer); ok {
		rep, err := ex.Check(src)
		if err != nil {
			return err
		}
		if !rep.Valid {
			return &ParseError{Path: path, Problems: rep.Problems}
		}
		return nil
	}
	ok, err := o.Valid(src)
	if err != nil {
		return err
	}
	if !ok {
		return &ParseError{Path: path}
	}
	return nil
}

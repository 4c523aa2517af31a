//go:build cgo

package oracle

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

// TreeSitter validates text with the tree-sitter Ruby grammar. A tree with any
// ERROR or MISSING node is invalid. The grammar recovers from an unmatched
// `end` without an error node, so an error-free tree is also checked for stray
// closers.
type TreeSitter struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewTreeSitter creates the grammar oracle.
func NewTreeSitter() (*TreeSitter, error) {
	p := sitter.NewParser()
	p.SetLanguage(ruby.GetLanguage())
	return &TreeSitter{parser: p}, nil
}

// TreeSitterAvailable reports whether the binary was built with cgo.
func TreeSitterAvailable() bool { return true }

// Valid parses src once.
func (t *TreeSitter) Valid(src string) (bool, error) {
	rep, err := t.Check(src)
	return rep.Valid, err
}

// Check parses src and reports the first error node of every top-level statement.
func (t *TreeSitter) Check(src string) (Report, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tree, err := t.parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		return Report{}, &Failure{Oracle: "tree-sitter", Err: fmt.Errorf("parse error: %w", err)}
	}
	defer tree.Close()

	root := tree.RootNode()
	var problems []Problem
	if !root.HasError() {
		code := []byte(src)
		strayEnds(root, code, &problems)
		if len(problems) == 0 {
			problems = unmatchedEnds(src)
		}
		return Report{Valid: len(problems) == 0, Problems: problems}, nil
	}
	collectErrors(root, &problems)
	if len(problems) == 0 {
		problems = append(problems, Problem{Msg: "syntax error"})
	}
	return Report{Valid: false, Problems: problems}, nil
}

// strayEnds reports `end` parsed as a plain identifier. `x.end` stays valid.
func strayEnds(n *sitter.Node, code []byte, out *[]Problem) {
	if n.Type() == "identifier" && n.Content(code) == "end" && !isMethodName(n) {
		*out = append(*out, Problem{
			Line: int(n.StartPoint().Row) + 1,
			Msg:  "syntax error, unexpected `end'",
		})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		strayEnds(n.Child(i), code, out)
	}
}

func isMethodName(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil || p.Type() != "call" {
		return false
	}
	m := p.ChildByFieldName("method")
	return m != nil && m.StartByte() == n.StartByte() && m.EndByte() == n.EndByte()
}

// unmatchedEnds keeps the closer problems of the structural walk: an `end`
// with nothing open above it.
func unmatchedEnds(src string) []Problem {
	var out []Problem
	for _, p := range check(src, true).Problems {
		if strings.HasPrefix(p.Msg, "unexpected `end'") {
			out = append(out, Problem{Line: p.Line, Msg: "syntax error, " + p.Msg})
		}
	}
	return out
}

func collectErrors(n *sitter.Node, out *[]Problem) {
	switch {
	case n.IsMissing():
		*out = append(*out, Problem{
			Line: int(n.StartPoint().Row) + 1,
			Msg:  fmt.Sprintf("syntax error, missing `%s'", n.Type()),
		})
		return
	case n.IsError():
		*out = append(*out, Problem{
			Line: int(n.StartPoint().Row) + 1,
			Msg:  "syntax error, unexpected input",
		})
		return
	}
	if !n.HasError() {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectErrors(n.Child(i), out)
	}
}

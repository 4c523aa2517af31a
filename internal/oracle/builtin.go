package oracle

import (
	"fmt"
	"slices"

	"faultline/internal/lexer"
	"faultline/internal/source"
	"faultline/internal/token"
)

// Builtin validates the block structure of Ruby-like code: keyword/`end`
// pairing, brackets, block parameter pipes, placement of `else`/`when`/`rescue`,
// conditions after `if`/`while`, literal termination and dangling operators.
// It is goroutine-safe and never fails.
type Builtin struct{}

// NewBuiltin returns the structural validator.
func NewBuiltin() *Builtin { return &Builtin{} }

// Valid reports whether src is structurally valid; it stops at the first problem.
func (b *Builtin) Valid(src string) (bool, error) {
	return check(src, false).Valid, nil
}

// Check validates src and collects every problem found.
func (b *Builtin) Check(src string) (Report, error) {
	return check(src, true), nil
}

// Разрешённые родители для промежуточных ключевых слов.
var midParents = map[token.Kind][]token.Kind{
	token.KwElsif:  {token.KwIf},
	token.KwElse:   {token.KwIf, token.KwUnless, token.KwCase, token.KwBegin, token.KwDef, token.KwDo, token.KwClass, token.KwModule},
	token.KwWhen:   {token.KwCase},
	token.KwIn:     {token.KwCase},
	token.KwRescue: {token.KwBegin, token.KwDef, token.KwDo, token.KwClass, token.KwModule},
	token.KwEnsure: {token.KwBegin, token.KwDef, token.KwDo, token.KwClass, token.KwModule},
}

type frame struct {
	kind      token.Kind
	line      int
	sawBranch bool // case: встречен when/in
}

type checker struct {
	stack    []frame
	problems []Problem
	all      bool
}

func check(src string, all bool) Report {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("<oracle>", []byte(src)))
	opts := lexer.Options{}
	if !all {
		opts.MaxProblems = 1
	}
	res := lexer.Lex(file, opts)

	c := &checker{all: all}
	for _, p := range res.Problems {
		c.problems = append(c.problems, Problem{Line: int(file.Position(p.Span.Start).Line), Msg: p.Msg})
	}
	if all || len(c.problems) == 0 {
		c.walk(res.Tokens)
	}
	return Report{Valid: len(c.problems) == 0, Problems: c.problems}
}

func (c *checker) fail(line int, format string, args ...any) {
	c.problems = append(c.problems, Problem{Line: line, Msg: fmt.Sprintf(format, args...)})
}

func (c *checker) done() bool {
	return !c.all && len(c.problems) > 0
}

func (c *checker) top() (*frame, bool) {
	if len(c.stack) == 0 {
		return nil, false
	}
	return &c.stack[len(c.stack)-1], true
}

func (c *checker) pop() {
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *checker) walk(toks []token.Token) {
	var prev token.Token
	hasPrev := false
	for i, tok := range toks {
		if tok.Kind == token.EOF {
			break
		}
		if tok.Trivial() && tok.Kind != token.Newline {
			continue
		}
		line := tok.Line + 1

		switch {
		case tok.Kind == token.Invalid:
			c.fail(line, "unexpected character `%s'", tok.Text)
		case tok.Kind.IsOpenBracket():
			c.stack = append(c.stack, frame{kind: tok.Kind, line: line})
		case tok.Kind.IsCloseBracket():
			c.dangling(prev, hasPrev, tok)
			c.closeBracket(tok, line)
		case tok.Kind == token.Comma:
			if hasPrev && (prev.Kind.IsOpenBracket() || prev.Kind == token.Comma) {
				c.fail(line, "unexpected ','")
			}
		case tok.Kind == token.Op && tok.Text == "||" && hasPrev && opensParams(prev):
			tok.Kind = token.Pipe // `do ||`: пустые параметры, не оператор
		case tok.Kind == token.Pipe:
			c.pipe(prev, hasPrev, line)
		}

		switch tok.Role {
		case token.RoleOpener:
			c.unclosedParams(tok, line)
			c.stack = append(c.stack, frame{kind: tok.Kind, line: line})
			c.header(toks, i, line)
		case token.RoleCloser:
			c.dangling(prev, hasPrev, tok)
			c.closeKeyword(tok, line)
		case token.RoleMid:
			c.dangling(prev, hasPrev, tok)
			c.mid(tok, line)
		}

		prev, hasPrev = tok, true
		if c.done() {
			return
		}
	}

	if hasPrev && (danglingOperator(prev) || prev.Kind == token.Comma) {
		c.fail(prev.Line+1, "unexpected end-of-input after `%s'", prev.Text)
	}
	for j := len(c.stack) - 1; j >= 0; j-- {
		f := c.stack[j]
		if f.kind.IsOpenBracket() || f.kind == token.Pipe {
			c.fail(f.line, "unexpected end-of-input, expecting `%s'", closingText(f.kind))
		} else {
			c.fail(f.line, "unexpected end-of-input, missing `end' for `%s'", f.kind)
		}
		if c.done() {
			return
		}
	}
}

// pipe opens block parameters right after `do` or `{` and closes them when
// they are open. Any other `|` is the binary operator.
func (c *checker) pipe(prev token.Token, hasPrev bool, line int) {
	if top, ok := c.top(); ok && top.kind == token.Pipe {
		c.pop()
		return
	}
	if hasPrev && opensParams(prev) {
		c.stack = append(c.stack, frame{kind: token.Pipe, line: line})
	}
}

func opensParams(t token.Token) bool {
	return t.Kind == token.KwDo || t.Kind == token.LBrace
}

// unclosedParams fails when tok arrives while block parameters are still open.
// The parameters are dropped so the rest of the walk sees the enclosing block.
func (c *checker) unclosedParams(tok token.Token, line int) {
	if top, ok := c.top(); ok && top.kind == token.Pipe {
		c.fail(line, "unexpected `%s', expecting `|'", tok.Text)
		c.pop()
	}
}

func (c *checker) closeBracket(tok token.Token, line int) {
	c.unclosedParams(tok, line)
	top, ok := c.top()
	switch {
	case !ok:
		c.fail(line, "unexpected `%s'", tok.Text)
	case top.kind.IsOpenBracket():
		if top.kind.Closing() != tok.Kind {
			c.fail(line, "unexpected `%s', expecting `%s'", tok.Text, closingText(top.kind))
		}
		c.pop()
	default:
		c.fail(line, "unexpected `%s', expecting `end'", tok.Text)
	}
}

func (c *checker) closeKeyword(tok token.Token, line int) {
	c.unclosedParams(tok, line)
	top, ok := c.top()
	switch {
	case !ok:
		c.fail(line, "unexpected `end'")
	case top.kind.IsOpenBracket():
		c.fail(line, "unexpected `end', expecting `%s'", closingText(top.kind))
	default:
		if top.kind == token.KwCase && !top.sawBranch {
			c.fail(line, "unexpected `end', expecting `when'")
		}
		c.pop()
	}
}

func (c *checker) mid(tok token.Token, line int) {
	c.unclosedParams(tok, line)
	top, ok := c.top()
	if !ok || top.kind.IsOpenBracket() || !slices.Contains(midParents[tok.Kind], top.kind) {
		c.fail(line, "unexpected `%s'", tok.Text)
		return
	}
	if tok.Kind == token.KwWhen || tok.Kind == token.KwIn {
		top.sawBranch = true
	}
}

// header checks what must follow an opener on the same line.
func (c *checker) header(toks []token.Token, i, line int) {
	next := token.Token{Kind: token.EOF}
	for _, t := range toks[i+1:] {
		if t.Kind != token.Comment {
			next = t
			break
		}
	}
	switch toks[i].Kind {
	case token.KwIf, token.KwUnless, token.KwWhile, token.KwUntil:
		switch next.Kind {
		case token.Newline, token.Semicolon, token.KwThen, token.KwDo, token.EOF:
			c.fail(line, "unexpected end of line, expecting condition after `%s'", toks[i].Text)
		}
	case token.KwDef:
		switch next.Kind {
		case token.Newline, token.Semicolon, token.EOF:
			c.fail(line, "unexpected end of line, expecting method name")
		}
	case token.KwClass:
		if next.Kind != token.Const && next.Kind != token.ColonColon && (next.Kind != token.Op || next.Text != "<<") {
			c.fail(line, "class/module name must be CONSTANT")
		}
	case token.KwModule:
		if next.Kind != token.Const && next.Kind != token.ColonColon {
			c.fail(line, "class/module name must be CONSTANT")
		}
	}
}

func (c *checker) dangling(prev token.Token, hasPrev bool, tok token.Token) {
	if hasPrev && danglingOperator(prev) {
		c.fail(tok.Line+1, "unexpected `%s' after `%s'", tok.Text, prev.Text)
	}
}

// danglingOperator reports tokens that need an operand after them.
func danglingOperator(t token.Token) bool {
	switch t.Kind {
	case token.Assign, token.Arrow, token.Dot, token.ColonColon, token.KwAnd, token.KwOr, token.KwNot:
		return true
	case token.Op:
		switch t.Text {
		case "*", "**", "&", "..", "...", "->":
			return false
		}
		return true
	default:
		return false
	}
}

func closingText(open token.Kind) string {
	switch open {
	case token.LParen:
		return ")"
	case token.LBracket:
		return "]"
	case token.LBrace:
		return "}"
	case token.Pipe:
		return "|"
	default:
		return "end"
	}
}

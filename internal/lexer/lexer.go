package lexer

import (
	"faultline/internal/source"
	"faultline/internal/token"
)

// LineFlags describe how a physical line relates to the lines around it.
type LineFlags uint8

const (
	// LineInLiteral: the line starts inside a string/regexp/percent literal opened above.
	LineInLiteral LineFlags = 1 << iota
	// LineHeredoc: the line belongs to a heredoc body (terminator included).
	LineHeredoc
	// LineAfterBackslash: the previous line ended with a `\` continuation.
	LineAfterBackslash
	// LineBlockComment: the line is part of an `=begin`/`=end` comment.
	LineBlockComment
	// LineData: the line is `__END__` or follows it.
	LineData
)

// Joined reports whether the line continues the logical line above it.
func (f LineFlags) Joined() bool {
	return f&(LineInLiteral|LineHeredoc|LineAfterBackslash) != 0
}

// Result is the outcome of lexing a whole file.
type Result struct {
	Tokens []token.Token // always ends with EOF
	Lines  []LineFlags   // one entry per physical line
	// Problems are in source order.
	Problems []Problem
}

// Lexer turns one file into tokens with block roles.
type Lexer struct {
	file   *source.File
	cursor cursor
	opts   Options

	toks  []token.Token
	lines []LineFlags
	line  int

	problems []Problem

	exprBeg     bool // следующий токен начинает выражение
	methodName  bool // после `.`, `::` или `def` ключевые слова — имена методов
	loopHeader  bool // внутри заголовка while/until/for до `do` или конца оператора
	spaceBefore bool
	pending     []heredoc
}

// New creates a lexer over file.
func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:    file,
		cursor:  newCursor(file),
		opts:    opts,
		lines:   make([]LineFlags, file.LineCount()),
		exprBeg: true,
	}
}

// Lex tokenizes file in one pass.
func Lex(file *source.File, opts Options) Result {
	return New(file, opts).Run()
}

// Run lexes the whole file, assigns block roles and returns the result.
// A Lexer must not be reused after Run.
func (lx *Lexer) Run() Result {
	for lx.step() {
	}
	lx.emit(token.EOF, lx.cursor.here(), token.RoleNone)
	assignDefRoles(lx.toks)
	return Result{Tokens: lx.toks, Lines: lx.lines, Problems: lx.problems}
}

// step scans one token or trivia element; false at EOF.
func (lx *Lexer) step() bool {
	lx.skipBlanks()
	if lx.cursor.done() {
		return false
	}

	ch := lx.cursor.peek()
	atStart := lx.cursor.lineStart()

	switch {
	case ch == '\n':
		lx.newline()
	case ch == '\\' && (lx.cursor.at(1) == '\n' || (lx.cursor.at(1) == '\r' && lx.cursor.at(2) == '\n')):
		lx.scanBackslash()
	case ch == '#':
		lx.scanLineComment()
	case atStart && ch == '=' && lx.cursor.startsWith("=begin") && isBlankOrEOL(lx.cursor.at(6)):
		lx.scanBlockComment()
	case atStart && ch == '_' && lx.cursor.startsWith("__END__") && isLineEnd(lx.cursor.at(7)):
		lx.scanData()
		return false
	case isIdentStartByte(ch):
		lx.scanIdentOrKeyword()
	case isDec(ch):
		lx.scanNumber()
	case ch == '"' || ch == '`':
		lx.scanQuoted(token.String, ch, ch, true)
	case ch == '\'':
		lx.scanQuoted(token.String, ch, ch, false)
	case ch == '@':
		lx.scanIVar()
	case ch == '$':
		lx.scanGVar()
	case ch == ':' && lx.symbolStart():
		lx.scanSymbol()
	case ch == '%' && lx.percentLiteralStart():
		lx.scanPercentLiteral()
	case ch == '/' && lx.regexpAllowed():
		lx.scanQuoted(token.Regexp, '/', '/', true)
	case ch == '<' && lx.heredocStart():
		lx.scanHeredocMarker()
	case ch == '?' && lx.charLiteralStart():
		lx.scanCharLiteral()
	default:
		lx.scanOperatorOrPunct()
	}
	return true
}

// emit appends a token covering [start, cursor) and updates expression state.
func (lx *Lexer) emit(kind token.Kind, start pos, role token.Role) token.Token {
	sp := lx.cursor.spanFrom(start)
	startLine := lx.line - countNewlines(lx.file.Content[sp.Start:sp.End])
	tok := token.Token{
		Kind:    kind,
		Span:    sp,
		Text:    string(lx.file.Content[sp.Start:sp.End]),
		Line:    startLine,
		EndLine: lx.line,
		Role:    role,
	}
	if lx.spaceBefore {
		tok.Flags |= token.SpaceBefore
	}
	if len(tok.Text) > 0 && tok.Text[len(tok.Text)-1] == '\n' {
		tok.EndLine--
	}
	if kind != token.Comment {
		for l := tok.Line + 1; l <= tok.EndLine; l++ {
			lx.markLine(l, LineInLiteral)
		}
	}
	lx.toks = append(lx.toks, tok)
	lx.spaceBefore = false
	if kind == token.Newline || !tok.Trivial() {
		lx.afterToken(tok)
	}
	return tok
}

func (lx *Lexer) markLine(l int, f LineFlags) {
	if l >= 0 && l < len(lx.lines) {
		lx.lines[l] |= f
	}
}

func (lx *Lexer) lastSignificant() (token.Token, bool) {
	for i := len(lx.toks) - 1; i >= 0; i-- {
		if !lx.toks[i].Trivial() || lx.toks[i].Kind == token.Newline {
			return lx.toks[i], true
		}
	}
	return token.Token{}, false
}

// afterToken updates exprBeg/methodName/loopHeader after a significant token.
func (lx *Lexer) afterToken(tok token.Token) {
	lx.methodName = false
	switch tok.Kind {
	case token.Ident, token.Const, token.IVar, token.GVar, token.Number, token.String, token.Regexp,
		token.Symbol, token.Heredoc, token.RParen, token.RBracket, token.RBrace,
		token.KwEnd, token.KwSelf, token.KwNil, token.KwTrue, token.KwFalse,
		token.KwReturn, token.KwBreak, token.KwNext, token.KwRedo, token.KwRetry, token.KwSuper, token.KwYield:
		lx.exprBeg = false
	case token.Dot, token.ColonColon:
		lx.exprBeg = false
		lx.methodName = true
	case token.KwDef:
		lx.exprBeg = false
		lx.methodName = true
	case token.Newline, token.Semicolon:
		lx.exprBeg = true
		lx.loopHeader = false
	default:
		lx.exprBeg = true
	}
}

// newline handles a '\n': emits a Newline unless the statement goes on,
// then reads pending heredoc bodies.
func (lx *Lexer) newline() {
	start := lx.cursor.here()
	terminate := false
	if last, ok := lx.lastSignificant(); ok && last.Kind != token.Newline && last.Kind != token.Semicolon {
		terminate = !last.ContinuesExpression()
	}
	lx.cursor.next()
	lx.line++
	if terminate {
		lx.emit(token.Newline, start, token.RoleNone)
	}
	lx.spaceBefore = false
	if len(lx.pending) > 0 {
		lx.readHeredocBodies()
	}
}

func (lx *Lexer) scanBackslash() {
	start := lx.cursor.here()
	lx.cursor.next()
	lx.cursor.skip('\r')
	lx.cursor.next()
	lx.line++
	lx.emit(token.Backslash, start, token.RoleNone)
	lx.markLine(lx.line, LineAfterBackslash)
	if len(lx.pending) > 0 {
		lx.readHeredocBodies()
	}
}

func (lx *Lexer) skipBlanks() {
	for {
		switch lx.cursor.peek() {
		case ' ', '\t', '\r', '\f', '\v':
			lx.cursor.next()
			lx.spaceBefore = true
		default:
			return
		}
	}
}

func countNewlines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}

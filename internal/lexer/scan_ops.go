package lexer

import (
	"strings"

	"faultline/internal/token"
)

// Длинные операторы идут первыми: выбираем самое длинное совпадение.
var operators = []string{
	"**=", "<=>", "===", "...", "<<=", ">>=", "&&=", "||=",
	"**", "==", "!=", ">=", "<=", "&&", "||", "<<", ">>", "=~", "!~", "..",
	"::", "->", "=>", "+=", "-=", "*=", "/=", "%=", "|=", "&=", "^=", "&.",
}

const singleOps = "+-*/%=<>!&|^~?:,.;()[]{}"

func (lx *Lexer) scanOperatorOrPunct() {
	start := lx.cursor.here()
	for _, op := range operators {
		if lx.cursor.startsWith(op) {
			for range len(op) {
				lx.cursor.next()
			}
			lx.emit(opKind(op), start, token.RoleNone)
			return
		}
	}

	c := lx.cursor.next()
	if strings.IndexByte(singleOps, c) < 0 {
		tok := lx.emit(token.Invalid, start, token.RoleNone)
		lx.report(ProblemUnexpectedChar, tok.Span, "unexpected character "+tok.Text)
		return
	}
	lx.emit(opKind(string(c)), start, token.RoleNone)
}

func opKind(op string) token.Kind {
	switch op {
	case "(":
		return token.LParen
	case ")":
		return token.RParen
	case "[":
		return token.LBracket
	case "]":
		return token.RBracket
	case "{":
		return token.LBrace
	case "}":
		return token.RBrace
	case ",":
		return token.Comma
	case ".", "&.":
		return token.Dot
	case "::":
		return token.ColonColon
	case ";":
		return token.Semicolon
	case "|":
		return token.Pipe
	case "=":
		return token.Assign
	case "=>":
		return token.Arrow
	default:
		return token.Op
	}
}

func (lx *Lexer) scanNumber() {
	start := lx.cursor.here()
	if lx.cursor.peek() == '0' && strings.IndexByte("xXbBoOdD", lx.cursor.at(1)) >= 0 {
		lx.cursor.next()
		lx.cursor.next()
		for isIdentContinueByte(lx.cursor.peek()) {
			lx.cursor.next()
		}
		lx.emit(token.Number, start, token.RoleNone)
		return
	}

	digits := func() {
		for isDec(lx.cursor.peek()) || lx.cursor.peek() == '_' {
			lx.cursor.next()
		}
	}
	digits()
	if lx.cursor.peek() == '.' && isDec(lx.cursor.at(1)) {
		lx.cursor.next()
		digits()
	}
	if c := lx.cursor.peek(); c == 'e' || c == 'E' {
		n := lx.cursor.at(1)
		if isDec(n) || ((n == '+' || n == '-') && isDec(lx.cursor.at(2))) {
			lx.cursor.next()
			lx.cursor.next()
			digits()
		}
	}
	if c := lx.cursor.peek(); (c == 'r' || c == 'i') && !isIdentContinueByte(lx.cursor.at(1)) {
		lx.cursor.next()
	}
	lx.emit(token.Number, start, token.RoleNone)
}

// Символы-операторы: :[]=, :<=>, :+ ...
var symbolOps = []string{
	"[]=", "[]", "<=>", "===", "==", "=~", "!=", "!~", "**", "<<", ">>", "<=", ">=", "+@", "-@",
	"+", "-", "*", "/", "%", "<", ">", "!", "~", "^", "&", "|",
}

func (lx *Lexer) symbolStart() bool {
	c1 := lx.cursor.at(1)
	switch {
	case c1 == ':':
		return false
	case isIdentStartByte(c1) || c1 == '"' || c1 == '\'' || c1 == '@' || c1 == '$':
		return true
	case strings.IndexByte("+-*/%<>=!~^&|[", c1) >= 0:
		return lx.exprBeg || lx.spaceBefore
	default:
		return false
	}
}

func (lx *Lexer) scanSymbol() {
	start := lx.cursor.here()
	lx.cursor.next()
	c := lx.cursor.peek()
	switch {
	case c == '"' || c == '\'':
		lx.cursor.next()
		ok := lx.scanDelimited(c, c, c == '"')
		lx.finishLiteral(token.Symbol, start, ok)
		return
	case isIdentStartByte(c) || c == '@' || c == '$':
		for lx.cursor.peek() == '@' || lx.cursor.peek() == '$' {
			lx.cursor.next()
		}
		for isIdentContinueByte(lx.cursor.peek()) {
			lx.cursor.next()
		}
		switch lx.cursor.peek() {
		case '?', '!':
			if lx.cursor.at(1) != '=' {
				lx.cursor.next()
			}
		case '=':
			if n := lx.cursor.at(1); n != '>' && n != '=' && n != '~' {
				lx.cursor.next()
			}
		}
		lx.emit(token.Symbol, start, token.RoleNone)
		return
	}
	for _, op := range symbolOps {
		if lx.cursor.startsWith(op) {
			for range len(op) {
				lx.cursor.next()
			}
			lx.emit(token.Symbol, start, token.RoleNone)
			return
		}
	}
	lx.emit(token.Op, start, token.RoleNone)
}

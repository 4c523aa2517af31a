package lexer

import (
	"strings"

	"faultline/internal/token"
)

// scanIdentOrKeyword читает идентификатор, константу, метку или ключевое слово.
func (lx *Lexer) scanIdentOrKeyword() {
	start := lx.cursor.here()
	methodName := lx.methodName
	defName := lx.inDefName()

	for isIdentContinueByte(lx.cursor.peek()) {
		lx.cursor.next()
	}
	// foo? / foo! — но не foo!= и не foo?=
	if c := lx.cursor.peek(); (c == '?' || c == '!') && (lx.cursor.at(1) != '=' || lx.cursor.at(2) == '=') {
		lx.cursor.next()
	}
	text := string(lx.file.Content[start:lx.cursor.off])

	// метка `name:` (ключевые слова тоже могут быть метками: `if:`)
	if lx.cursor.peek() == ':' && lx.cursor.at(1) != ':' && !defName {
		lx.cursor.next()
		lx.emit(token.Label, start, token.RoleNone)
		return
	}

	// сеттер в заголовке def: `def name=(v)`
	if defName && lx.cursor.peek() == '=' {
		switch lx.cursor.at(1) {
		case '(', ' ', '\t':
			lx.cursor.next()
			lx.emit(token.Ident, start, token.RoleNone)
			return
		}
	}

	if methodName {
		if text == "self" {
			lx.emit(token.KwSelf, start, token.RoleNone)
			return
		}
		lx.emit(identKind(text), start, token.RoleNone)
		return
	}

	if kw, ok := token.LookupKeyword(text); ok {
		lx.keyword(kw, start)
		return
	}
	lx.emit(identKind(text), start, token.RoleNone)
}

func identKind(text string) token.Kind {
	if text != "" && isUpper(text[0]) {
		return token.Const
	}
	return token.Ident
}

// keyword emits kw with the role implied by the current expression state.
func (lx *Lexer) keyword(kw token.Kind, start pos) {
	role := token.RoleNone
	switch kw {
	case token.KwIf, token.KwUnless:
		if lx.exprBeg {
			role = token.RoleOpener
		} else {
			role = token.RoleModifier
		}
	case token.KwWhile, token.KwUntil:
		if lx.exprBeg {
			role = token.RoleOpener
			lx.loopHeader = true
		} else {
			role = token.RoleModifier
		}
	case token.KwFor:
		role = token.RoleOpener
		lx.loopHeader = true
	case token.KwDo:
		if lx.loopHeader {
			role = token.RoleLoopDo
			lx.loopHeader = false
		} else {
			role = token.RoleOpener
		}
	case token.KwDef, token.KwClass, token.KwModule, token.KwCase, token.KwBegin:
		role = token.RoleOpener
	case token.KwEnd:
		role = token.RoleCloser
	case token.KwElse, token.KwElsif, token.KwWhen, token.KwEnsure:
		role = token.RoleMid
	case token.KwIn:
		if !lx.loopHeader && lx.exprBeg {
			role = token.RoleMid
		}
	case token.KwRescue:
		if lx.exprBeg {
			role = token.RoleMid
		} else {
			role = token.RoleModifier
		}
	}
	lx.emit(kw, start, role)
}

// inDefName reports whether the next identifier names the method of a `def`
// (`def foo`, `def self.foo`, `def Const.foo`).
func (lx *Lexer) inDefName() bool {
	n := len(lx.toks)
	if n == 0 {
		return false
	}
	if lx.toks[n-1].Kind == token.KwDef {
		return true
	}
	if n >= 3 && lx.toks[n-1].Kind == token.Dot && lx.toks[n-3].Kind == token.KwDef {
		switch lx.toks[n-2].Kind {
		case token.KwSelf, token.Ident, token.Const:
			return true
		}
	}
	return false
}

func (lx *Lexer) scanIVar() {
	start := lx.cursor.here()
	lx.cursor.next()
	lx.cursor.skip('@')
	if !isIdentStartByte(lx.cursor.peek()) {
		lx.emit(token.Op, start, token.RoleNone)
		return
	}
	for isIdentContinueByte(lx.cursor.peek()) {
		lx.cursor.next()
	}
	lx.emit(token.IVar, start, token.RoleNone)
}

const gvarSpecials = "!@&~'\"+*$?:/\\;,.=<>0_`"

func (lx *Lexer) scanGVar() {
	start := lx.cursor.here()
	lx.cursor.next()
	c := lx.cursor.peek()
	switch {
	case isIdentStartByte(c):
		for isIdentContinueByte(lx.cursor.peek()) {
			lx.cursor.next()
		}
	case isDec(c):
		for isDec(lx.cursor.peek()) {
			lx.cursor.next()
		}
	case c == '-' && isIdentContinueByte(lx.cursor.at(1)):
		lx.cursor.next()
		lx.cursor.next()
	case c != 0 && strings.IndexByte(gvarSpecials, c) >= 0:
		lx.cursor.next()
	default:
		lx.emit(token.Op, start, token.RoleNone)
		return
	}
	lx.emit(token.GVar, start, token.RoleNone)
}

package lexer

import (
	"strings"

	"faultline/internal/token"
)

// heredoc is a marker seen on the current line whose body starts on the next one.
type heredoc struct {
	id     string
	indent bool // <<~ и <<- разрешают отступ перед терминатором
}

// scanQuoted reads a literal delimited by open/close starting at the cursor.
func (lx *Lexer) scanQuoted(kind token.Kind, open, closeCh byte, interp bool) {
	start := lx.cursor.here()
	lx.cursor.next()
	ok := lx.scanDelimited(open, closeCh, interp)
	if ok && kind == token.Regexp {
		for isIdentContinueByte(lx.cursor.peek()) {
			lx.cursor.next()
		}
	}
	lx.finishLiteral(kind, start, ok)
}

func (lx *Lexer) finishLiteral(kind token.Kind, start pos, terminated bool) {
	tok := lx.emit(kind, start, token.RoleNone)
	if terminated {
		return
	}
	lx.toks[len(lx.toks)-1].Flags |= token.Unterminated
	problem := ProblemUnterminatedString
	if kind == token.Regexp {
		problem = ProblemUnterminatedRegexp
	}
	lx.report(problem, tok.Span, "unterminated literal meets end-of-file")
}

// scanDelimited consumes the body of a literal after its opening delimiter,
// including the closing one. Brackets nest when open != closeCh.
func (lx *Lexer) scanDelimited(open, closeCh byte, interp bool) bool {
	depth := 0
	for !lx.cursor.done() {
		c := lx.cursor.next()
		switch {
		case c == '\\':
			if lx.cursor.next() == '\n' {
				lx.line++
			}
		case c == '\n':
			lx.line++
		case interp && c == '#' && lx.cursor.peek() == '{':
			lx.cursor.next()
			if !lx.scanInterpolation() {
				return false
			}
		case open != closeCh && c == open:
			depth++
		case c == closeCh:
			if depth == 0 {
				return true
			}
			depth--
		}
	}
	return false
}

// scanInterpolation skips `#{ ... }` with nested braces and strings.
func (lx *Lexer) scanInterpolation() bool {
	depth := 1
	for !lx.cursor.done() {
		c := lx.cursor.next()
		switch c {
		case '\n':
			lx.line++
		case '\\':
			if lx.cursor.next() == '\n' {
				lx.line++
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return true
			}
		case '"', '`':
			if !lx.scanDelimited(c, c, true) {
				return false
			}
		case '\'':
			if !lx.scanDelimited(c, c, false) {
				return false
			}
		}
	}
	return false
}

func isPercentDelim(c byte) bool {
	return c != 0 && !isIdentContinueByte(c) && !isBlankOrEOL(c) && c != '='
}

func (lx *Lexer) percentLiteralStart() bool {
	c1 := lx.cursor.at(1)
	if strings.IndexByte("qQwWiIrsx", c1) >= 0 {
		if !isPercentDelim(lx.cursor.at(2)) {
			return false
		}
	} else if !isPercentDelim(c1) {
		return false
	}
	if lx.exprBeg {
		return true
	}
	last, ok := lx.lastSignificant()
	return ok && last.Kind == token.Ident && lx.spaceBefore
}

func (lx *Lexer) scanPercentLiteral() {
	start := lx.cursor.here()
	lx.cursor.next()
	kind := token.String
	interp := true
	if c := lx.cursor.peek(); isIdentStartByte(c) {
		lx.cursor.next()
		switch c {
		case 'q', 'w', 'i':
			interp = false
		case 's':
			interp = false
			kind = token.Symbol
		case 'r':
			kind = token.Regexp
		}
	}
	open := lx.cursor.next()
	ok := lx.scanDelimited(open, closerFor(open), interp)
	if ok && kind == token.Regexp {
		for isIdentContinueByte(lx.cursor.peek()) {
			lx.cursor.next()
		}
	}
	lx.finishLiteral(kind, start, ok)
}

func (lx *Lexer) regexpAllowed() bool {
	if lx.exprBeg {
		return true
	}
	last, ok := lx.lastSignificant()
	if !ok || last.Kind != token.Ident || !lx.spaceBefore {
		return false
	}
	n := lx.cursor.at(1)
	return !isBlankOrEOL(n) && n != '='
}

func (lx *Lexer) heredocStart() bool {
	if !lx.cursor.startsWith("<<") {
		return false
	}
	c := lx.cursor.at(2)
	squiggly := c == '~' || c == '-'
	if squiggly {
		c = lx.cursor.at(3)
	}
	switch {
	case c == '"' || c == '\'' || c == '`':
	case squiggly && isIdentStartByte(c):
	case isUpper(c) || c == '_':
	default:
		return false
	}
	if lx.exprBeg {
		return true
	}
	last, ok := lx.lastSignificant()
	return ok && last.Kind == token.Ident && lx.spaceBefore
}

func (lx *Lexer) scanHeredocMarker() {
	start := lx.cursor.here()
	lx.cursor.next()
	lx.cursor.next()
	h := heredoc{}
	if c := lx.cursor.peek(); c == '~' || c == '-' {
		h.indent = true
		lx.cursor.next()
	}
	if q := lx.cursor.peek(); q == '"' || q == '\'' || q == '`' {
		lx.cursor.next()
		idStart := lx.cursor.off
		for !lx.cursor.done() && lx.cursor.peek() != q && lx.cursor.peek() != '\n' {
			lx.cursor.next()
		}
		h.id = string(lx.file.Content[idStart:lx.cursor.off])
		if !lx.cursor.skip(q) {
			lx.finishLiteral(token.Heredoc, start, false)
			return
		}
	} else {
		idStart := lx.cursor.off
		for isIdentContinueByte(lx.cursor.peek()) {
			lx.cursor.next()
		}
		h.id = string(lx.file.Content[idStart:lx.cursor.off])
	}
	lx.pending = append(lx.pending, h)
	lx.emit(token.Heredoc, start, token.RoleNone)
}

// readHeredocBodies consumes the bodies of every marker seen on the previous line.
func (lx *Lexer) readHeredocBodies() {
	pending := lx.pending
	lx.pending = nil
	for _, h := range pending {
		start := lx.cursor.here()
		terminated := false
		for !lx.cursor.done() {
			lineStart := lx.cursor.off
			for !lx.cursor.done() && lx.cursor.peek() != '\n' {
				lx.cursor.next()
			}
			text := string(lx.file.Content[lineStart:lx.cursor.off])
			lx.markLine(lx.line, LineHeredoc)
			if lx.cursor.skip('\n') {
				lx.line++
			}
			text = strings.TrimRight(text, "\r")
			if h.indent {
				text = strings.TrimLeft(text, " \t")
			}
			if text == h.id {
				terminated = true
				break
			}
		}
		tok := lx.emit(token.HeredocBody, start, token.RoleNone)
		if !terminated {
			lx.toks[len(lx.toks)-1].Flags |= token.Unterminated
			lx.report(ProblemUnterminatedHeredoc, tok.Span, "can't find string \""+h.id+"\" anywhere before EOF")
		}
	}
}

func (lx *Lexer) charLiteralStart() bool {
	if !lx.exprBeg {
		return false
	}
	c1 := lx.cursor.at(1)
	if isBlankOrEOL(c1) {
		return false
	}
	if c1 == '\\' {
		return !isLineEnd(lx.cursor.at(2))
	}
	return !isIdentContinueByte(lx.cursor.at(2))
}

func (lx *Lexer) scanCharLiteral() {
	start := lx.cursor.here()
	lx.cursor.next()
	if lx.cursor.next() == '\\' {
		lx.cursor.next()
	}
	lx.emit(token.String, start, token.RoleNone)
}

package lexer

import (
	"faultline/internal/token"
)

// scanLineComment reads `# ...` up to (not including) the newline.
func (lx *Lexer) scanLineComment() {
	start := lx.cursor.here()
	for !lx.cursor.done() && lx.cursor.peek() != '\n' {
		lx.cursor.next()
	}
	lx.emit(token.Comment, start, token.RoleNone)
}

// scanBlockComment reads an `=begin` ... `=end` block; both marker lines are part of it.
func (lx *Lexer) scanBlockComment() {
	start := lx.cursor.here()
	first := lx.line
	terminated := false
	for {
		lineStart := lx.cursor.here()
		for !lx.cursor.done() && lx.cursor.peek() != '\n' {
			lx.cursor.next()
		}
		lx.markLine(lx.line, LineBlockComment)
		if lx.line != first && isEndMarker(lx.file.Content[lineStart:lx.cursor.off]) {
			terminated = true
			break
		}
		if lx.cursor.done() {
			break
		}
		lx.cursor.next()
		lx.line++
	}
	tok := lx.emit(token.Comment, start, token.RoleNone)
	if !terminated {
		lx.toks[len(lx.toks)-1].Flags |= token.Unterminated
		lx.report(ProblemUnterminatedComment, tok.Span, "embedded document meets end of file")
	}
}

func isEndMarker(line []byte) bool {
	if len(line) < 4 || string(line[:4]) != "=end" {
		return false
	}
	return len(line) == 4 || isBlankOrEOL(line[4])
}

// scanData consumes everything after `__END__`.
func (lx *Lexer) scanData() {
	for l := lx.line; l < len(lx.lines); l++ {
		lx.markLine(l, LineData)
	}
	lx.cursor.toEnd()
}

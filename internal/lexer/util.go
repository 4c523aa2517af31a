package lexer

// Байты >= 0x80 считаем частью идентификатора: UTF-8 имена допустимы.
func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b >= 0x80
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isLineEnd(b byte) bool { return b == '\n' || b == '\r' || b == 0 }

func isBlankOrEOL(b byte) bool {
	return b == ' ' || b == '\t' || isLineEnd(b)
}

// closerFor returns the closing delimiter of a percent literal or quote.
func closerFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	default:
		return open
	}
}

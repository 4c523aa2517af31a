package lexer

import (
	"faultline/internal/token"
)

// assignDefRoles demotes endless method definitions (`def name(args) = expr`):
// they never take an `end`.
func assignDefRoles(toks []token.Token) {
	for i := range toks {
		if toks[i].Kind != token.KwDef || toks[i].Role != token.RoleOpener {
			continue
		}
		if isEndlessDef(toks, i) {
			toks[i].Role = token.RoleNone
		}
	}
}

func isEndlessDef(toks []token.Token, def int) bool {
	j := def + 1
	at := func(k int) token.Kind {
		if k < len(toks) {
			return toks[k].Kind
		}
		return token.EOF
	}

	// receiver: `self.`, `Const.`, `obj.`
	switch at(j) {
	case token.KwSelf, token.Const, token.Ident:
		if at(j+1) == token.Dot {
			j += 2
		}
	}
	// имя метода — ровно один токен
	switch at(j) {
	case token.Newline, token.Semicolon, token.EOF:
		return false
	}
	j++
	if at(j) == token.LParen {
		depth := 0
	params:
		for ; j < len(toks); j++ {
			switch toks[j].Kind {
			case token.LParen:
				depth++
			case token.RParen:
				depth--
				if depth == 0 {
					break params
				}
			case token.EOF:
				return false
			}
		}
		j++
	}
	return at(j) == token.Assign
}

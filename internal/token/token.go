package token

import (
	"faultline/internal/source"
)

// Role is the structural part a token plays in block nesting.
type Role uint8

const (
	// RoleNone: the token does not open or close anything.
	RoleNone Role = iota
	// RoleOpener: a keyword that must be closed by `end`.
	RoleOpener
	// RoleCloser: `end`.
	RoleCloser
	// RoleMid: a keyword continuing the innermost block (`else`, `when`, `rescue`...).
	RoleMid
	// RoleModifier: a trailing `if`/`unless`/`while`/`until`/`rescue`.
	RoleModifier
	// RoleLoopDo: the optional `do` of a `while`/`until`/`for` header.
	RoleLoopDo
)

func (r Role) String() string {
	switch r {
	case RoleOpener:
		return "opener"
	case RoleCloser:
		return "closer"
	case RoleMid:
		return "mid"
	case RoleModifier:
		return "modifier"
	case RoleLoopDo:
		return "loop-do"
	default:
		return "none"
	}
}

// Flags carry lexing outcomes that matter to validation.
type Flags uint8

const (
	// Unterminated marks a literal or comment that ran into EOF.
	Unterminated Flags = 1 << iota
	// SpaceBefore marks a token preceded by blanks on the same line.
	SpaceBefore
)

// Token represents a single source token with its location.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Line    int // 0-based line of the first byte
	EndLine int // 0-based line of the last byte
	Role    Role
	Flags   Flags
}

// Has reports whether all bits of f are set.
func (t Token) Has(f Flags) bool {
	return t.Flags&f == f
}

// IsLiteral reports whether the token is a literal value.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case Number, String, Regexp, Symbol, Heredoc, KwNil, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// Trivial reports whether the token carries no code (comments and heredoc bodies
// are attributed to their own lines but never affect nesting).
func (t Token) Trivial() bool {
	return t.Kind == Comment || t.Kind == Newline || t.Kind == HeredocBody || t.Kind == Backslash
}

// ContinuesExpression reports whether a line ending with t must go on with the next line.
func (t Token) ContinuesExpression() bool {
	switch t.Kind {
	case Comma, Dot, ColonColon, Assign, Arrow, LParen, LBracket, LBrace, Backslash:
		return true
	case Op:
		return t.Text != ".." && t.Text != "..."
	case KwAnd, KwOr, KwNot:
		return true
	default:
		return false
	}
}

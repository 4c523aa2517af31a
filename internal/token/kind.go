package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Newline terminates a statement; swallowed newlines are not emitted.
	Newline
	// Semicolon separates statements on one line.
	Semicolon

	// Ident is a local name or method name (also `foo?`, `foo!`).
	Ident
	// Const is a capitalized name.
	Const
	// IVar is `@x` or `@@x`.
	IVar
	// GVar is `$x`, `$1`, `$!`.
	GVar
	// Label is a hash key or keyword argument written `name:`.
	Label
	// Symbol is `:name`, `:"quoted"` or an operator symbol.
	Symbol

	// Number is any numeric literal.
	Number
	// String is a quoted, backtick or percent string literal, possibly spanning lines.
	String
	// Regexp is a `/.../` or `%r{...}` literal.
	Regexp
	// Heredoc is the `<<~ID` marker; the body follows as HeredocBody.
	Heredoc
	// HeredocBody covers the body lines including the terminator line.
	HeredocBody
	// Comment is a `#` comment or an `=begin`/`=end` block.
	Comment
	// Backslash is a trailing `\` that joins the next line.
	Backslash

	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]
	LBrace   // {
	RBrace   // }
	Comma    // ,
	Dot      // . or &.
	ColonColon
	Pipe   // |
	Assign // = on its own
	Arrow  // =>
	// Op is any other operator; Text holds the lexeme.
	Op

	keywordsStart
	KwDef
	KwClass
	KwModule
	KwIf
	KwUnless
	KwWhile
	KwUntil
	KwCase
	KwFor
	KwBegin
	KwDo
	KwEnd
	KwElse
	KwElsif
	KwWhen
	KwIn
	KwThen
	KwRescue
	KwEnsure
	KwReturn
	KwYield
	KwSelf
	KwNil
	KwTrue
	KwFalse
	KwAnd
	KwOr
	KwNot
	KwBreak
	KwNext
	KwRedo
	KwRetry
	KwSuper
	KwDefined
	KwAlias
	KwUndef
	KwBEGIN
	KwEND
	keywordsEnd
)

var kindNames = [...]string{
	Invalid:     "Invalid",
	EOF:         "EOF",
	Newline:     "Newline",
	Semicolon:   "Semicolon",
	Ident:       "Ident",
	Const:       "Const",
	IVar:        "IVar",
	GVar:        "GVar",
	Label:       "Label",
	Symbol:      "Symbol",
	Number:      "Number",
	String:      "String",
	Regexp:      "Regexp",
	Heredoc:     "Heredoc",
	HeredocBody: "HeredocBody",
	Comment:     "Comment",
	Backslash:   "Backslash",
	LParen:      "LParen",
	RParen:      "RParen",
	LBracket:    "LBracket",
	RBracket:    "RBracket",
	LBrace:      "LBrace",
	RBrace:      "RBrace",
	Comma:       "Comma",
	Dot:         "Dot",
	ColonColon:  "ColonColon",
	Pipe:        "Pipe",
	Assign:      "Assign",
	Arrow:       "Arrow",
	Op:          "Op",
}

// String returns the kind name; keywords print as their lexeme.
func (k Kind) String() string {
	if k.IsKeyword() {
		if s, ok := keywordText[k]; ok {
			return s
		}
	}
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k > keywordsStart && k < keywordsEnd
}

// IsOpenBracket reports whether k opens a bracket pair.
func (k Kind) IsOpenBracket() bool {
	return k == LParen || k == LBracket || k == LBrace
}

// IsCloseBracket reports whether k closes a bracket pair.
func (k Kind) IsCloseBracket() bool {
	return k == RParen || k == RBracket || k == RBrace
}

// Closing returns the kind that closes the bracket k.
func (k Kind) Closing() Kind {
	switch k {
	case LParen:
		return RParen
	case LBracket:
		return RBracket
	case LBrace:
		return RBrace
	default:
		return Invalid
	}
}

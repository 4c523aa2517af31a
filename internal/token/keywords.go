package token

var keywords = map[string]Kind{
	"def":      KwDef,
	"class":    KwClass,
	"module":   KwModule,
	"if":       KwIf,
	"unless":   KwUnless,
	"while":    KwWhile,
	"until":    KwUntil,
	"case":     KwCase,
	"for":      KwFor,
	"begin":    KwBegin,
	"do":       KwDo,
	"end":      KwEnd,
	"else":     KwElse,
	"elsif":    KwElsif,
	"when":     KwWhen,
	"in":       KwIn,
	"then":     KwThen,
	"rescue":   KwRescue,
	"ensure":   KwEnsure,
	"return":   KwReturn,
	"yield":    KwYield,
	"self":     KwSelf,
	"nil":      KwNil,
	"true":     KwTrue,
	"false":    KwFalse,
	"and":      KwAnd,
	"or":       KwOr,
	"not":      KwNot,
	"break":    KwBreak,
	"next":     KwNext,
	"redo":     KwRedo,
	"retry":    KwRetry,
	"super":    KwSuper,
	"defined?": KwDefined,
	"alias":    KwAlias,
	"undef":    KwUndef,
	"BEGIN":    KwBEGIN,
	"END":      KwEND,
}

var keywordText = func() map[Kind]string {
	m := make(map[Kind]string, len(keywords))
	for s, k := range keywords {
		m[k] = s
	}
	return m
}()

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// BlockKeyword reports whether k can open a block closed by `end`
// when it is used in statement position.
func BlockKeyword(k Kind) bool {
	switch k {
	case KwDef, KwClass, KwModule, KwIf, KwUnless, KwWhile, KwUntil, KwCase, KwFor, KwBegin, KwDo:
		return true
	default:
		return false
	}
}

// ModifierKeyword reports whether k can trail an expression as a modifier.
func ModifierKeyword(k Kind) bool {
	switch k {
	case KwIf, KwUnless, KwWhile, KwUntil, KwRescue:
		return true
	default:
		return false
	}
}

// MidKeyword reports whether k continues an open block (`else`, `when`...).
func MidKeyword(k Kind) bool {
	switch k {
	case KwElse, KwElsif, KwWhen, KwIn, KwRescue, KwEnsure:
		return true
	default:
		return false
	}
}

package token

import (
	"testing"
)

func TestLookupKeyword(t *testing.T) {
	cases := map[string]Kind{
		"def":      KwDef,
		"end":      KwEnd,
		"elsif":    KwElsif,
		"defined?": KwDefined,
		"BEGIN":    KwBEGIN,
	}
	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok || got != want {
			t.Errorf("LookupKeyword(%q) = %v, %v; want %v", lexeme, got, ok, want)
		}
	}
	for _, lexeme := range []string{"End", "DEF", "puts", "ending", ""} {
		if _, ok := LookupKeyword(lexeme); ok {
			t.Errorf("LookupKeyword(%q) must not be a keyword", lexeme)
		}
	}
}

func TestKeywordClasses(t *testing.T) {
	tests := []struct {
		k        Kind
		block    bool
		modifier bool
		mid      bool
	}{
		{KwDef, true, false, false},
		{KwIf, true, true, false},
		{KwWhile, true, true, false},
		{KwDo, true, false, false},
		{KwRescue, false, true, true},
		{KwElse, false, false, true},
		{KwEnd, false, false, false},
		{KwReturn, false, false, false},
	}
	for _, tt := range tests {
		if got := BlockKeyword(tt.k); got != tt.block {
			t.Errorf("BlockKeyword(%v) = %v", tt.k, got)
		}
		if got := ModifierKeyword(tt.k); got != tt.modifier {
			t.Errorf("ModifierKeyword(%v) = %v", tt.k, got)
		}
		if got := MidKeyword(tt.k); got != tt.mid {
			t.Errorf("MidKeyword(%v) = %v", tt.k, got)
		}
	}
}

func TestKindString(t *testing.T) {
	if KwDef.String() != "def" || KwEnd.String() != "end" {
		t.Errorf("keyword names: %s %s", KwDef, KwEnd)
	}
	if LParen.String() != "LParen" || Ident.String() != "Ident" {
		t.Errorf("kind names: %s %s", LParen, Ident)
	}
	if !KwBEGIN.IsKeyword() || Op.IsKeyword() {
		t.Error("IsKeyword mismatch")
	}
}

func TestBrackets(t *testing.T) {
	pairs := map[Kind]Kind{LParen: RParen, LBracket: RBracket, LBrace: RBrace}
	for open, closeKind := range pairs {
		if !open.IsOpenBracket() || !closeKind.IsCloseBracket() {
			t.Errorf("%v/%v bracket classification", open, closeKind)
		}
		if open.Closing() != closeKind {
			t.Errorf("%v.Closing() = %v", open, open.Closing())
		}
	}
	if Ident.Closing() != Invalid {
		t.Error("non bracket must close nothing")
	}
}

func TestContinuesExpression(t *testing.T) {
	tests := []struct {
		tok  Token
		want bool
	}{
		{Token{Kind: Comma}, true},
		{Token{Kind: Op, Text: "+"}, true},
		{Token{Kind: Op, Text: "&&"}, true},
		{Token{Kind: Op, Text: ".."}, false},
		{Token{Kind: Pipe}, false},
		{Token{Kind: Ident}, false},
		{Token{Kind: RParen}, false},
		{Token{Kind: KwAnd}, true},
	}
	for _, tt := range tests {
		if got := tt.tok.ContinuesExpression(); got != tt.want {
			t.Errorf("%v %q: ContinuesExpression = %v, want %v", tt.tok.Kind, tt.tok.Text, got, tt.want)
		}
	}
}

package oracle

import (
	"strings"
	"testing"
)

func TestBuiltinValid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"empty", "", true},
		{"blank lines", "\n\n  \n", true},
		{"def", "def dog\nend\n", true},
		{"nested def missing end", "def dog\n  def lol\nend\n", false},
		{"lone opener", "  def lol\n", false},
		{"lone end", "  end\n", false},
		{"stray end", "def foo\n  end\nend\n", false},
		{"two do blocks", "describe X do\nend\n\nit Y do\nend\n", true},
		{"broken do block", "describe X do\n  Foo.call\n  end\nend\n", false},
		{"if else", "if a\n  b\nelsif c\n  d\nelse\n  e\nend\n", true},
		{"modifier if", "return 1 if x\n", true},
		{"while do", "while x do\n  y\nend\n", true},
		{"case when", "case x\nwhen 1 then :a\nelse :b\nend\n", true},
		{"case without when", "case x\nend\n", false},
		{"else outside", "else\n", false},
		{"elsif in unless", "unless a\nelsif b\nend\n", false},
		{"rescue in def", "def a\n  x\nrescue StandardError => e\n  y\nensure\n  z\nend\n", true},
		{"modifier rescue", "x = y rescue nil\n", true},
		{"brackets", "foo(bar[1], { a: 2 })\n", true},
		{"unclosed paren", "foo(bar\n", false},
		{"mismatched bracket", "foo(bar]\n", false},
		{"extra closer", "foo)\n", false},
		{"paren around end", "foo(\nend\n", false},
		{"string with end", "x = \"end (\"\n", true},
		{"unterminated string", "x = \"abc\n", false},
		{"endless def", "def sq(x) = x * x\n", true},
		{"def without name", "def\nend\n", false},
		{"class lowercase", "class foo\nend\n", false},
		{"singleton class", "class << self\nend\n", true},
		{"dangling operator", "x = 1 +\n", false},
		{"dangling assign before end", "def a\n  x =\nend\n", false},
		{"operator continues", "x = 1 +\n  2\n", true},
		{"trailing comma in array", "[\n  1,\n  2,\n]\n", true},
		{"double comma", "foo(1,, 2)\n", false},
		{"endless range", "x = (1..)\n", true},
		{"splat", "foo(*)\n", true},
		{"heredoc", "x = <<~EOS\n  def (\nEOS\n", true},
		{"comment", "# def\n", true},
		{"lambda", "f = ->(x) { x }\n", true},
		{"block comment", "=begin\ndef\n=end\n", true},
		{"block params", "foo.each do |a, (b, c)|\n  a\nend\n", true},
		{"brace params", "foo.map { |x| x * 2 }\n", true},
		{"empty params", "foo do ||\nend\n", true},
		{"params then end", "foo do |a| end\n", true},
		{"binary pipe", "x = a | b\n", true},
		{"unclosed params", "class Blerg\n  Foo.call do |a\n  end\nend\n", false},
		{"unclosed brace params", "foo { |a }\n", false},
		{"params at eof", "foo do |a\n", false},
		{"if without condition", "if\nend\n", false},
		{"while without condition", "while\n  x\nend\n", false},
		{"unless then", "unless then\nend\n", false},
		{"if with comment", "if x # why\n  y\nend\n", true},
	}
	b := NewBuiltin()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Valid(tt.src)
			if err != nil {
				t.Fatalf("Valid error: %v", err)
			}
			if got != tt.want {
				rep, _ := b.Check(tt.src)
				t.Errorf("Valid(%q) = %v, want %v (problems %v)", tt.src, got, tt.want, rep.Messages())
			}
		})
	}
}

func TestBuiltinCheckMessages(t *testing.T) {
	tests := []struct {
		src  string
		line int
		want string
	}{
		{"def dog\n  def lol\nend\n", 1, "missing `end' for `def'"},
		{"end\n", 1, "unexpected `end'"},
		{"foo(\n", 1, "expecting `)'"},
		{"case x\nend\n", 2, "expecting `when'"},
	}
	b := NewBuiltin()
	for _, tt := range tests {
		rep, err := b.Check(tt.src)
		if err != nil {
			t.Fatal(err)
		}
		if rep.Valid || len(rep.Problems) == 0 {
			t.Fatalf("Check(%q) reported valid", tt.src)
		}
		p := rep.Problems[0]
		if p.Line != tt.line || !strings.Contains(p.Msg, tt.want) {
			t.Errorf("Check(%q) first problem = %v, want line %d containing %q", tt.src, p, tt.line, tt.want)
		}
	}
}

func TestBuiltinNamesMissingPipe(t *testing.T) {
	rep, err := NewBuiltin().Check("Foo.call do |a\n  end\n")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Valid || len(rep.Problems) == 0 || !strings.Contains(rep.Problems[0].Msg, "expecting `|'") {
		t.Errorf("problems = %+v", rep.Problems)
	}
	if rep.Problems[0].Line != 2 {
		t.Errorf("line = %d, want 2", rep.Problems[0].Line)
	}
}

func TestBuiltinCheckCollectsAll(t *testing.T) {
	rep, _ := NewBuiltin().Check("end\nend\n")
	if len(rep.Problems) != 2 {
		t.Errorf("problems = %v, want 2", rep.Messages())
	}
}

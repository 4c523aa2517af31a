package lexer_test

import (
	"strings"
	"testing"

	"faultline/internal/lexer"
	"faultline/internal/source"
	"faultline/internal/token"
)

// problems holds the kinds of the problems the lexer found
type problems struct {
	kinds []lexer.ProblemKind
}

func lexString(t *testing.T, src string) (lexer.Result, *problems) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.rb", []byte(src)))
	res := lexer.Lex(file, lexer.Options{})
	rep := &problems{}
	for _, p := range res.Problems {
		rep.kinds = append(rep.kinds, p.Kind)
	}
	return res, rep
}

// roles returns "text:role" for every token with a block role.
func roles(res lexer.Result) string {
	var parts []string
	for _, tok := range res.Tokens {
		if tok.Role != token.RoleNone {
			parts = append(parts, tok.Text+":"+tok.Role.String())
		}
	}
	return strings.Join(parts, " ")
}

func kinds(res lexer.Result) []token.Kind {
	out := make([]token.Kind, 0, len(res.Tokens))
	for _, tok := range res.Tokens {
		if tok.Kind == token.Newline || tok.Kind == token.EOF {
			continue
		}
		out = append(out, tok.Kind)
	}
	return out
}

func TestKeywordRoles(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"def", "def foo\nend\n", "def:opener end:closer"},
		{"modifier if", "return if x\n", "if:modifier"},
		{"statement if", "if x\n  y\nend\n", "if:opener end:closer"},
		{"assigned if", "a = if x then 1 else 2 end\n", "if:opener else:mid end:closer"},
		{"trailing unless", "foo unless bar\n", "unless:modifier"},
		{"loop do", "while x do\n  y\nend\n", "while:opener do:loop-do end:closer"},
		{"for in do", "for a in b do\nend\n", "for:opener do:loop-do end:closer"},
		{"block do", "items.each do |i|\n  puts i\nend\n", "do:opener end:closer"},
		{"endless def", "def sq(x) = x * x\n", ""},
		{"endless def no args", "def one = 1\n", ""},
		{"setter def", "def name=(v)\n  @name = v\nend\n", "def:opener end:closer"},
		{"operator def", "def ==(other)\n  true\nend\n", "def:opener end:closer"},
		{"method named end", "x.end\nrange.begin\n", ""},
		{"def end", "def end\nend\n", "def:opener end:closer"},
		{"label", "foo(if: 1, end: 2)\n", ""},
		{"symbol", "send(:end, :if)\n", ""},
		{"rescue", "begin\n  x\nrescue => e\n  y\nensure\n  z\nend\n", "begin:opener rescue:mid ensure:mid end:closer"},
		{"rescue modifier", "x = y rescue nil\n", "rescue:modifier"},
		{"case in", "case v\nin Integer\n  1\nend\n", "case:opener in:mid end:closer"},
		{"end chain", "end.map { |x| x } if y\n", "end:closer if:modifier"},
		{"self class", "self.class\n", ""},
		{"class", "class Foo < Bar\nend\n", "class:opener end:closer"},
		{"singleton class", "class << self\nend\n", "class:opener end:closer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := lexString(t, tt.src)
			if got := roles(res); got != tt.want {
				t.Errorf("roles(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestLiteralsAreOpaque(t *testing.T) {
	tests := []string{
		"x = \"end ( [ {\"\n",
		"x = 'do'\n",
		"x = %w[if end do]\n",
		"x = %q(a (nested) end)\n",
		"x = /end|do/i\n",
		"x = \"#{items.map { |i| \"#{i} end\" }.join}\"\n",
		"# def comment\n",
		"x = :\"end\"\n",
		"c = ?(\n",
	}
	for _, src := range tests {
		res, rep := lexString(t, src)
		for _, tok := range res.Tokens {
			if tok.Role != token.RoleNone || tok.Kind.IsOpenBracket() {
				t.Errorf("%q: unexpected structural token %v %q", src, tok.Kind, tok.Text)
			}
		}
		if len(rep.kinds) != 0 {
			t.Errorf("%q: unexpected problems %v", src, rep.kinds)
		}
	}
}

func TestDivisionAndRegexp(t *testing.T) {
	res, _ := lexString(t, "a = b / c\nd = /x/\n")
	var regexps, ops int
	for _, tok := range res.Tokens {
		switch {
		case tok.Kind == token.Regexp:
			regexps++
		case tok.Kind == token.Op && tok.Text == "/":
			ops++
		}
	}
	if regexps != 1 || ops != 1 {
		t.Errorf("regexps=%d ops=%d, want 1 and 1", regexps, ops)
	}
}

func TestHeredocLines(t *testing.T) {
	src := "x = <<~EOS\n  def not_code\n  EOS\ny = 1\n"
	res, rep := lexString(t, src)
	if len(rep.kinds) != 0 {
		t.Fatalf("problems: %v", rep.kinds)
	}
	want := []bool{false, true, true, false}
	for i, w := range want {
		if got := res.Lines[i]&lexer.LineHeredoc != 0; got != w {
			t.Errorf("line %d heredoc = %v, want %v", i, got, w)
		}
	}
	if roles(res) != "" {
		t.Errorf("heredoc body leaked roles: %q", roles(res))
	}
}

func TestUnterminatedHeredoc(t *testing.T) {
	res, rep := lexString(t, "x = <<-EOS\nbody\n")
	if len(rep.kinds) != 1 || rep.kinds[0] != lexer.ProblemUnterminatedHeredoc {
		t.Fatalf("problems = %v", rep.kinds)
	}
	if p := res.Problems[0]; p.Span.Empty() || !strings.Contains(p.Msg, "EOS") {
		t.Errorf("problem = %+v", p)
	}
}

func TestMaxProblems(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.rb", []byte("a = `\nb = \"\n")))
	if n := len(lexer.Lex(file, lexer.Options{}).Problems); n < 1 {
		t.Fatalf("no problems recorded")
	}
	if n := len(lexer.Lex(file, lexer.Options{MaxProblems: 1}).Problems); n != 1 {
		t.Errorf("MaxProblems ignored: %d", n)
	}
}

func TestMultilineStringFlags(t *testing.T) {
	res, _ := lexString(t, "x = \"a\nb\nc\"\ny\n")
	want := []lexer.LineFlags{0, lexer.LineInLiteral, lexer.LineInLiteral, 0}
	for i, w := range want {
		if res.Lines[i] != w {
			t.Errorf("line %d flags = %b, want %b", i, res.Lines[i], w)
		}
	}
}

func TestBackslashContinuation(t *testing.T) {
	res, _ := lexString(t, "x = 1 + \\\n  2\n")
	if res.Lines[1]&lexer.LineAfterBackslash == 0 {
		t.Errorf("line 1 flags = %b", res.Lines[1])
	}
	if !res.Lines[1].Joined() {
		t.Error("line after backslash must be joined")
	}
}

func TestBlockCommentAndData(t *testing.T) {
	src := "=begin\ndef x\n=end\nputs 1\n__END__\ndef y\n"
	res, rep := lexString(t, src)
	if len(rep.kinds) != 0 {
		t.Fatalf("problems: %v", rep.kinds)
	}
	for i := 0; i < 3; i++ {
		if res.Lines[i]&lexer.LineBlockComment == 0 {
			t.Errorf("line %d should be block comment", i)
		}
	}
	if res.Lines[4]&lexer.LineData == 0 || res.Lines[5]&lexer.LineData == 0 {
		t.Errorf("data lines not flagged: %v", res.Lines)
	}
	if roles(res) != "" {
		t.Errorf("roles leaked: %q", roles(res))
	}
}

func TestUnterminatedString(t *testing.T) {
	res, rep := lexString(t, "x = \"abc\ny = 1\n")
	if len(rep.kinds) != 1 || rep.kinds[0] != lexer.ProblemUnterminatedString {
		t.Fatalf("problems = %v", rep.kinds)
	}
	last := res.Tokens[len(res.Tokens)-2]
	if !last.Has(token.Unterminated) {
		t.Errorf("token %q not flagged", last.Text)
	}
}

func TestNewlineSwallowedAfterOperator(t *testing.T) {
	res, _ := lexString(t, "x = a +\n  b\n")
	newlines := 0
	for _, tok := range res.Tokens {
		if tok.Kind == token.Newline {
			newlines++
		}
	}
	if newlines != 1 {
		t.Errorf("newlines = %d, want 1", newlines)
	}
}

func TestTokenLines(t *testing.T) {
	res, _ := lexString(t, "a\n\n  b c\n")
	var got []int
	for _, tok := range res.Tokens {
		if tok.Kind == token.Ident {
			got = append(got, tok.Line)
		}
	}
	want := []int{0, 2, 2}
	if len(got) != len(want) {
		t.Fatalf("lines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("lines = %v, want %v", got, want)
		}
	}
}

func TestKinds(t *testing.T) {
	res, _ := lexString(t, "@a = $b[:c] || Foo::Bar.new(1.5e3, key: 'v')\n")
	want := []token.Kind{
		token.IVar, token.Assign, token.GVar, token.LBracket, token.Symbol, token.RBracket, token.Op,
		token.Const, token.ColonColon, token.Const, token.Dot, token.Ident, token.LParen, token.Number,
		token.Comma, token.Label, token.String, token.RParen,
	}
	got := kinds(res)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v\nwant  %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

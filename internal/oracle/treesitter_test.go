//go:build cgo

package oracle

import (
	"strings"
	"testing"
)

func TestTreeSitterValid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"empty", "", true},
		{"method", "def a\n  b\nend\n", true},
		{"range end", "x = (1..2).end\n", true},
		{"block params", "foo.each do |a|\n  a\nend\n", true},
		{"bare end", "end\n", false},
		{"end after statement", "x = 1\nend\n", false},
		{"stray closer", "def foo\n  end\nend\n", false},
		{"inner opener", "def dog\n  def lol\nend\n", false},
		{"missing end", "def a\n  x\n", false},
	}
	ts, err := NewTreeSitter()
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.Valid(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestTreeSitterNamesStrayEnd(t *testing.T) {
	ts, err := NewTreeSitter()
	if err != nil {
		t.Fatal(err)
	}
	rep, err := ts.Check("x = 1\nend\n")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Valid || len(rep.Problems) == 0 {
		t.Fatalf("report = %+v", rep)
	}
	if p := rep.Problems[0]; p.Line != 2 || !strings.Contains(p.Msg, "`end'") {
		t.Errorf("problem = %+v", p)
	}
}

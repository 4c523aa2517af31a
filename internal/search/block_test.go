package search

import (
	"errors"
	"testing"

	"faultline/internal/document"
	"faultline/internal/oracle"
	"faultline/internal/testkit"
)

func span(doc *document.Document, first, last int) *Block {
	return NewBlock(doc.Lines()[first : last+1])
}

func TestBlockCurrentIndent(t *testing.T) {
	doc := document.New("def a\n    x\n\n  y\nend\n")
	tests := []struct {
		first, last int
		want        int
	}{
		{1, 3, 2},
		{1, 1, 4},
		{2, 2, 0},
		{0, 4, 0},
	}
	for _, tt := range tests {
		if got := span(doc, tt.first, tt.last).CurrentIndent(); got != tt.want {
			t.Errorf("lines %d-%d: CurrentIndent = %d, want %d", tt.first, tt.last, got, tt.want)
		}
	}

	doc.Line(3).Hide()
	if got := span(doc, 1, 3).CurrentIndent(); got != 4 {
		t.Errorf("hidden line must not count: %d", got)
	}
	doc.Line(1).Hide()
	if got := span(doc, 1, 3).CurrentIndent(); got != 2 {
		t.Errorf("all hidden falls back to hidden lines: %d", got)
	}
}

func TestBlockValidSkipsOracleForExplainedLines(t *testing.T) {
	doc := document.New("def a\n\n  # note\n  x\nend\n")
	counting := oracle.NewCounting(oracle.NewBuiltin())

	empty := span(doc, 1, 2)
	if ok, err := empty.Valid(counting); err != nil || !ok {
		t.Fatalf("empty block: %v %v", ok, err)
	}
	doc.Line(3).Hide()
	hidden := span(doc, 1, 3)
	if ok, err := hidden.Valid(counting); err != nil || !ok {
		t.Fatalf("hidden block: %v %v", ok, err)
	}
	if counting.Calls() != 0 {
		t.Errorf("oracle called %d times for explained blocks", counting.Calls())
	}

	opener := span(doc, 0, 0)
	for range 2 {
		if ok, _ := opener.Valid(counting); ok {
			t.Fatal("lone def reported valid")
		}
	}
	if counting.Calls() != 1 {
		t.Errorf("validity not memoized: %d calls", counting.Calls())
	}
}

func TestBlockValidWrapsOracleErrors(t *testing.T) {
	doc := document.New("x\n")
	boom := errors.New("boom")
	_, err := span(doc, 0, 0).Valid(oracle.Func(func(string) (bool, error) { return false, boom }))
	if !errors.Is(err, boom) || !oracle.IsFailure(err) {
		t.Fatalf("err = %v, want oracle failure wrapping boom", err)
	}
	b := span(doc, 0, 0)
	_, _ = b.Valid(oracle.Func(func(string) (bool, error) { return false, boom }))
	if _, known := b.KnownValid(); known {
		t.Error("failure must not be cached")
	}
}

func TestBlockRoundTrip(t *testing.T) {
	src := "class A\n  x = <<~EOS\n    text\n  EOS\n  y\nend"
	doc := document.New(src)
	for first := 0; first < doc.Len(); first++ {
		for last := first; last < doc.Len(); last++ {
			b := span(doc, first, last)
			if err := testkit.CheckRoundTrip(doc.File(), b.Span(), b.Text()); err != nil {
				t.Errorf("lines %d-%d: %v", first, last, err)
			}
		}
	}
}

func TestCompare(t *testing.T) {
	doc := document.New("a\n  b\n  c\nd\n")
	outer := span(doc, 0, 3)
	inner1 := span(doc, 1, 1)
	inner2 := span(doc, 2, 2)
	if Compare(inner1, inner2) >= 0 {
		t.Error("same indent orders by start")
	}
	if Compare(outer, inner1) >= 0 {
		t.Error("smaller indent orders first")
	}
	outer.priority = 1
	if Compare(outer, inner2) <= 0 {
		t.Error("priority orders before indent")
	}
	if !outer.Contains(inner1) || inner1.Contains(outer) {
		t.Error("Contains")
	}
	if inner1.String() != "line 2" || outer.String() != "lines 1-4" {
		t.Errorf("String = %q, %q", inner1, outer)
	}
}

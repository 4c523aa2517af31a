package search

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"faultline/internal/document"
	"faultline/internal/oracle"
)

func TestExpandToEnclosingIndent(t *testing.T) {
	doc := document.New(siblings)
	e := NewExpander(doc.Lines(), oracle.NewBuiltin(), nil)
	got, err := e.Expand(span(doc, 2, 2))
	if err != nil {
		t.Fatal(err)
	}
	if got.Start() != 1 || got.End() != 3 {
		t.Errorf("Expand = %s, want lines 2-4", got)
	}
}

func TestExpandNeighborsThroughHidden(t *testing.T) {
	doc := document.New(siblings)
	for i := 1; i <= 3; i++ {
		doc.Line(i).Hide()
	}
	e := NewExpander(doc.Lines(), oracle.NewBuiltin(), nil)
	got, err := e.Expand(span(doc, 1, 3))
	if err != nil {
		t.Fatal(err)
	}
	// пустая строка забирается первой
	if got.Start() != 1 || got.End() != 4 {
		t.Errorf("Expand = %s, want lines 2-5", got)
	}
	got, err = e.Expand(got)
	if err != nil {
		t.Fatal(err)
	}
	if got.Start() != 1 || got.End() != 7 {
		t.Errorf("second Expand = %s, want lines 2-8", got)
	}
}

func TestExpandBalancesLeaningBlock(t *testing.T) {
	doc := document.New("def a\n  if x\n    y\n\n  end\nend\n")
	e := NewExpander(doc.Lines(), oracle.NewBuiltin(), nil)
	// "if x" takes its `end` past the blank line, but not the outer one
	got, err := e.Expand(span(doc, 1, 2))
	if err != nil {
		t.Fatal(err)
	}
	if got.Start() != 1 || got.End() != 4 {
		t.Errorf("Expand = %s, want lines 2-5", got)
	}
	if got.Balance().Leaning() != document.LeanEqual {
		t.Errorf("balance %v", got.Balance())
	}
}

func TestExpandWholeDocumentIsNoProgress(t *testing.T) {
	doc := document.New("a\nb\n")
	e := NewExpander(doc.Lines(), oracle.NewBuiltin(), nil)
	b := span(doc, 0, 1)
	got, err := e.Expand(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != b {
		t.Errorf("Expand at both edges = %s, want the same block", got)
	}
}

func TestExpandStallsAtLimit(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	doc := document.New("def a\n  if x\n    y\n\n  end\nend\n")
	e := NewExpander(doc.Lines(), oracle.NewBuiltin(), logger)
	e.SetLimit(1)
	got, err := e.Expand(span(doc, 1, 2))
	if err != nil {
		t.Fatal(err)
	}
	// шаг до лимита уже сделан
	if got.Start() != 1 || got.End() != 4 {
		t.Errorf("Expand = %s, want lines 2-5", got)
	}
	if e.Stalls() != 1 {
		t.Errorf("Stalls = %d, want 1", e.Stalls())
	}
	if out := buf.String(); !strings.Contains(out, "block expansion stalled") || !strings.Contains(out, "level=WARN") {
		t.Errorf("log = %q", out)
	}
}

package search

import (
	"testing"

	"faultline/internal/document"
	"faultline/internal/oracle"
)

func TestSeedShortRun(t *testing.T) {
	doc := document.New("def dog\n  def lol\nend\n")
	s := NewSeeder(doc.Lines(), oracle.NewBuiltin(), nil)
	blocks, err := s.Seed(doc.Line(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Text() != "  def lol\n" {
		t.Fatalf("blocks = %v", blocks)
	}
}

func TestSeedValidRunIsOneBlock(t *testing.T) {
	doc := document.New("def a\n  x = 1\n\n  y = 2\n  z = 3\nend\n")
	counting := oracle.NewCounting(oracle.NewBuiltin())
	blocks, err := NewSeeder(doc.Lines(), counting, nil).Seed(doc.Line(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Start() != 1 || blocks[0].End() != 4 {
		t.Fatalf("blocks = %v", blocks)
	}
	if counting.Calls() != 1 {
		t.Errorf("calls = %d, want 1", counting.Calls())
	}
}

func TestSeedSplitsStrayCloser(t *testing.T) {
	doc := document.New("def foo\n  a = 1\n  b = 2\n  end\n  c = 3\nend\n")
	blocks, err := NewSeeder(doc.Lines(), oracle.NewBuiltin(), nil).Seed(doc.Line(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 {
		t.Fatalf("blocks = %v", blocks)
	}
	if blocks[0].Start() != 4 || blocks[0].End() != 4 {
		t.Errorf("first block %s, want line 5", blocks[0])
	}
	if blocks[1].Start() != 1 || blocks[1].End() != 3 {
		t.Errorf("second block %s, want lines 2-4", blocks[1])
	}
}

func TestSeedRespectsClaimedLines(t *testing.T) {
	doc := document.New("a\n  b\n  c\n  d\n")
	claimed := func(l *document.Line) bool { return l.Index == 2 }
	blocks, err := NewSeeder(doc.Lines(), oracle.NewBuiltin(), claimed).Seed(doc.Line(3))
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Start() != 3 {
		t.Errorf("blocks = %v", blocks)
	}
}

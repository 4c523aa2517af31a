package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetIDs(t *testing.T) {
	fs := NewFileSet()
	id1 := fs.Add("app.rb", []byte("puts 1\n"), 0)
	id2 := fs.Add("./lib/../app.rb", []byte("puts 2\n"), 0)
	if id1 == id2 || fs.Len() != 2 {
		t.Fatalf("ids %d %d, len %d", id1, id2, fs.Len())
	}
	if got := fs.Get(id2).Path; got != "app.rb" {
		t.Errorf("path = %q, want cleaned", got)
	}
	if got := string(fs.Get(id1).Content); got != "puts 1\n" {
		t.Errorf("first content = %q", got)
	}
}

func TestAddVirtualKeepsBytes(t *testing.T) {
	fs := NewFileSet()
	src := []byte("a\r\nb\n")
	file := fs.Get(fs.AddVirtual("stdin", src))

	if string(file.Content) != string(src) {
		t.Errorf("virtual content changed: %q", file.Content)
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag")
	}
	if file.LineCount() != 2 || file.Line(1) != "a\r" {
		t.Errorf("lines: count=%d first=%q", file.LineCount(), file.Line(1))
	}
	if start, end := file.LineBounds(1); start != 3 || end != 5 {
		t.Errorf("LineBounds(1) = %d, %d", start, end)
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.rb")
	content := []byte{0xEF, 0xBB, 0xBF, 'd', 'e', 'f', '\r', '\n', 'e', 'n', 'd', '\r', '\n'}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "def\nend\n" {
		t.Errorf("content = %q", file.Content)
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b, want BOM and CRLF", file.Flags)
	}
}

func TestLoadDecodesUTF16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.rb")
	// "if x\r\nend\n" в UTF-16LE с BOM
	raw := []byte{0xFF, 0xFE}
	for _, r := range "if x\r\nend\n" {
		raw = append(raw, byte(r), 0)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	file := fs.Get(id)
	if string(file.Content) != "if x\nend\n" {
		t.Errorf("content = %q", file.Content)
	}
	if file.Flags&FileUTF16 == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b", file.Flags)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "nope.rb")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.rb", []byte("ab\ncd\n"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{5, LineCol{2, 3}},
		{6, LineCol{3, 1}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
		}
	}
}

func TestLine(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("t.rb", []byte("first\nsecond\nthird")))

	if file.LineCount() != 3 {
		t.Fatalf("LineCount = %d, want 3", file.LineCount())
	}
	tests := map[uint32]string{0: "", 1: "first", 2: "second", 3: "third", 4: ""}
	for n, want := range tests {
		if got := file.Line(n); got != want {
			t.Errorf("Line(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got.Start != 2 || got.End != 8 {
		t.Errorf("Cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 100}); got != a {
		t.Errorf("Cover across files changed span: %v", got)
	}
	if !a.Cover(b).Contains(a) || a.Contains(b) {
		t.Error("Contains mismatch")
	}
}

func TestRelativePathOutsideBase(t *testing.T) {
	base := t.TempDir()
	outside := filepath.Join(filepath.Dir(base), "elsewhere", "f.rb")
	got, err := RelativePath(outside, base)
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(filepath.FromSlash(got)) {
		t.Errorf("expected absolute fallback, got %q", got)
	}

	inside := filepath.Join(base, "lib", "f.rb")
	got, err = RelativePath(inside, base)
	if err != nil {
		t.Fatal(err)
	}
	if got != "lib/f.rb" {
		t.Errorf("RelativePath = %q, want lib/f.rb", got)
	}
}

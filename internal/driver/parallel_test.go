package driver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"faultline/internal/diag"
	"faultline/internal/progress"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher(nil, []string{"vendor/**", "*_spec.rb"})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		rel  string
		want bool
	}{
		{"a.rb", true},
		{"lib/deep/b.rb", true},
		{"notes.txt", false},
		{"vendor/gem/c.rb", false},
		{"spec/d_spec.rb", false},
	}
	for _, tt := range tests {
		if got := m.Match(tt.rel); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
	if _, err := NewMatcher([]string{"[a"}, nil); err == nil {
		t.Error("invalid pattern accepted")
	}
}

func TestListFilesSorted(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"z.rb":      "",
		"a/b.rb":    "",
		"a/c.txt":   "",
		"vendor.rb": "",
	})
	m, err := NewMatcher(nil, []string{"vendor.rb"})
	if err != nil {
		t.Fatal(err)
	}
	files, err := ListFiles(dir, m)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a", "b.rb"), filepath.Join(dir, "z.rb")}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestAnalyzeDir(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.rb":           "def a\nend\n",
		"lib/b.rb":       "def dog\n  def lol\nend\n",
		"lib/c.rb":       "x = [1,\n",
		"vendor/skip.rb": "def\n",
		"README.md":      "def\n",
	})
	if err := os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "dangling.rb")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	var (
		mu       sync.Mutex
		finished = map[string]progress.Status{}
	)
	sink := progress.FuncSink(func(e progress.Event) {
		if !e.Status.Finished() {
			return
		}
		mu.Lock()
		finished[filepath.Base(e.File)] = e.Status
		mu.Unlock()
	})

	results, err := AnalyzeDir(context.Background(), dir, Options{
		Exclude:  []string{"vendor/**"},
		Jobs:     2,
		Progress: sink,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("results = %d, want 4", len(results))
	}
	want := []struct {
		base  string
		valid bool
	}{
		{"a.rb", true},
		{"dangling.rb", false},
		{"b.rb", false},
		{"c.rb", false},
	}
	for i, w := range want {
		r := results[i]
		if r == nil {
			t.Fatalf("result %d is nil", i)
		}
		if filepath.Base(r.Path) != w.base || r.Valid() != w.valid {
			t.Errorf("result %d = %s valid=%v, want %s valid=%v", i, r.Path, r.Valid(), w.base, w.valid)
		}
	}
	if _, ok := findCode(results[1].Bag, diag.IOLoadFileError); !ok {
		t.Errorf("dangling link: %+v", results[1].Bag.Items())
	}
	if len(results[2].Blocks) != 1 || results[2].Blocks[0].Text() != "  def lol\n" {
		t.Errorf("b.rb blocks = %v", results[2].Blocks)
	}

	mu.Lock()
	defer mu.Unlock()
	if finished["a.rb"] != progress.StatusDone || finished["b.rb"] != progress.StatusInvalid ||
		finished["dangling.rb"] != progress.StatusError {
		t.Errorf("final statuses = %v", finished)
	}
}

func TestAnalyzeDirEmpty(t *testing.T) {
	results, err := AnalyzeDir(context.Background(), writeTree(t, map[string]string{"x.txt": ""}), Options{})
	if err != nil || len(results) != 0 {
		t.Errorf("results = %v, err = %v", results, err)
	}
}

func TestAnalyzeDirCanceled(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.rb": "def a\nend\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := AnalyzeDir(ctx, dir, Options{}); err == nil {
		t.Error("canceled context must fail the run")
	}
}

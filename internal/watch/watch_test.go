package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	var (
		mu      sync.Mutex
		flushed []string
	)
	d := NewDebouncer(50*time.Millisecond, func(p string) {
		mu.Lock()
		flushed = append(flushed, p)
		mu.Unlock()
	})
	defer d.Stop()

	d.Add("a.rb")
	time.Sleep(10 * time.Millisecond)
	d.Add("a.rb")
	time.Sleep(10 * time.Millisecond)
	d.Add("a.rb")
	d.Add("b.rb")
	if d.Pending() != 2 {
		t.Errorf("pending = %d, want 2", d.Pending())
	}

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(flushed) != 2 {
		t.Fatalf("flushed = %v, want one per path", flushed)
	}
	if d.Pending() != 0 {
		t.Errorf("pending after flush = %d", d.Pending())
	}
}

func TestDebouncerStopDropsPending(t *testing.T) {
	called := make(chan string, 1)
	d := NewDebouncer(20*time.Millisecond, func(p string) { called <- p })
	d.Add("a.rb")
	d.Stop()
	d.Add("b.rb")

	select {
	case p := <-called:
		t.Errorf("flushed %q after Stop", p)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestWatcherAnalyzesChangedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := New(dir, Options{Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := make(chan Update, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(u Update) { updates <- u })
	}()

	if err := os.WriteFile(filepath.Join(dir, "lib", "notes.txt"), []byte("def\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "lib", "dog.rb")
	if err := os.WriteFile(target, []byte("def dog\n  def lol\nend\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case u := <-updates:
		if u.Err != nil {
			t.Fatal(u.Err)
		}
		if u.Path != target {
			t.Errorf("update for %q, want %q", u.Path, target)
		}
		if u.Result == nil || len(u.Result.Blocks) != 1 {
			t.Errorf("result = %+v", u.Result)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no update after writing the file")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Run did not stop")
	}
}

func TestNewMissingPath(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope"), Options{}); err == nil {
		t.Error("expected error for a missing path")
	}
}

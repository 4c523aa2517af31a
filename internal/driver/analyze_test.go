package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"faultline/internal/diag"
	"faultline/internal/metrics"
	"faultline/internal/oracle"
	"faultline/internal/progress"
)

func findCode(bag *diag.Bag, code diag.Code) (diag.Diagnostic, bool) {
	for _, d := range bag.Items() {
		if d.Code == code {
			return d, true
		}
	}
	return diag.Diagnostic{}, false
}

func TestAnalyzeSourceInnerOpener(t *testing.T) {
	res, err := AnalyzeSource(context.Background(), "dog.rb", "def dog\n  def lol\nend\n", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks) != 1 || res.Blocks[0].Text() != "  def lol\n" {
		t.Fatalf("blocks = %v", res.Blocks)
	}
	if res.Valid() || !res.Stats.Minimal || res.Stats.Stalled {
		t.Errorf("valid=%v stats=%+v", res.Valid(), res.Stats)
	}
	d, ok := findCode(res.Bag, diag.SynMissingEnd)
	if !ok {
		t.Fatalf("no %s diagnostic in %+v", diag.SynMissingEnd.ID(), res.Bag.Items())
	}
	if d.Severity != diag.SevError || !strings.Contains(d.Message, "missing `end'") {
		t.Errorf("diagnostic = %+v", d)
	}
	start, _ := res.FileSet.Resolve(d.Primary)
	if start.Line != 2 {
		t.Errorf("primary line = %d, want 2", start.Line)
	}
	if len(d.Notes) == 0 {
		t.Fatal("expected parser notes")
	}
	noteStart, _ := res.FileSet.Resolve(d.Notes[0].Span)
	if noteStart.Line != 2 || !strings.Contains(d.Notes[0].Msg, "end-of-input") {
		t.Errorf("note = %+v at line %d", d.Notes[0], noteStart.Line)
	}
	if res.Explanation.Primary().String() != "missing-end" {
		t.Errorf("explanation = %v", res.Explanation)
	}
}

func TestAnalyzeSourceValid(t *testing.T) {
	res, err := AnalyzeSource(context.Background(), "ok.rb", "class A\n  def b\n    c(1)\n  end\nend\n", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valid() || res.Bag.Len() != 0 {
		t.Errorf("valid=%v diags=%+v", res.Valid(), res.Bag.Items())
	}
	if res.Document.Len() != 5 {
		t.Errorf("document lines = %d", res.Document.Len())
	}
}

func TestAnalyzeSourceTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	slow := oracle.Func(func(string) (bool, error) {
		<-release
		return true, nil
	})

	reg := prometheus.NewRegistry()
	res, err := AnalyzeSource(context.Background(), "slow.rb", "puts 1\n", Options{
		Oracle:  slow,
		Timeout: 20 * time.Millisecond,
		Metrics: metrics.New(reg),
	})
	if !errors.Is(err, ErrSearchTimeout) {
		t.Fatalf("err = %v, want ErrSearchTimeout", err)
	}
	if res == nil || len(res.Blocks) != 0 {
		t.Fatalf("timeout result = %+v", res)
	}
	if _, ok := findCode(res.Bag, diag.SrchTimeout); !ok {
		t.Errorf("no timeout diagnostic: %+v", res.Bag.Items())
	}
	if got := counterValue(t, reg, "faultline_search_timeouts_total"); got != 1 {
		t.Errorf("timeouts counter = %v, want 1", got)
	}
}

func TestTimeoutStopsOracleCalls(t *testing.T) {
	var calls atomic.Int64
	slow := oracle.Func(func(src string) (bool, error) {
		calls.Add(1)
		time.Sleep(2 * time.Millisecond)
		return !strings.Contains(src, "def broken"), nil
	})
	var sb strings.Builder
	for i := range 200 {
		fmt.Fprintf(&sb, "def m%d\n  x\nend\n", i)
	}
	sb.WriteString("def broken\n")

	_, err := AnalyzeSource(context.Background(), "many.rb", sb.String(), Options{
		Oracle:  slow,
		Timeout: 20 * time.Millisecond,
	})
	if !errors.Is(err, ErrSearchTimeout) {
		t.Fatalf("err = %v, want ErrSearchTimeout", err)
	}
	atTimeout := calls.Load()
	time.Sleep(100 * time.Millisecond)
	// один вызов мог уже идти в момент таймаута
	if later := calls.Load(); later > atTimeout+1 {
		t.Errorf("oracle calls after timeout: %d at return, %d later", atTimeout, later)
	}
}

func TestAnalyzeSourceOracleFailure(t *testing.T) {
	boom := errors.New("boom")
	res, err := AnalyzeSource(context.Background(), "x.rb", "puts 1\n", Options{
		Oracle:  oracle.Func(func(string) (bool, error) { return false, boom }),
		Timeout: -1,
	})
	if res != nil {
		t.Errorf("result on failure = %+v", res)
	}
	if !errors.Is(err, boom) || !oracle.IsFailure(err) {
		t.Errorf("err = %v", err)
	}
}

func TestAnalyzeSourceTimingsAndProgress(t *testing.T) {
	var (
		mu     sync.Mutex
		events []progress.Event
	)
	sink := progress.FuncSink(func(e progress.Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	res, err := AnalyzeSource(context.Background(), "a.rb", "def a\n  x(\nend\n", Options{
		EnableTimings: true,
		Progress:      sink,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Timing == nil {
		t.Fatal("timings requested but missing")
	}
	names := make([]string, 0, len(res.Timing.Phases))
	for _, p := range res.Timing.Phases {
		names = append(names, p.Name)
	}
	if got := strings.Join(names, ","); got != "lines,search,explain" {
		t.Errorf("phases = %s", got)
	}
	d, ok := findCode(res.Bag, diag.ObsTimings)
	if !ok || d.Severity != diag.SevInfo || len(d.Notes) != 1 || !strings.HasPrefix(d.Notes[0].Msg, "{") {
		t.Errorf("timing diagnostic = %+v", d)
	}
	if _, ok := findCode(res.Bag, diag.SynMissingCloser); !ok {
		t.Errorf("expected %s: %+v", diag.SynMissingCloser.ID(), res.Bag.Items())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) == 0 {
		t.Fatal("no progress events")
	}
	last := events[len(events)-1]
	if last.Status != progress.StatusInvalid || last.Blocks != 1 || last.File != "a.rb" {
		t.Errorf("last event = %+v", last)
	}
	for _, e := range events[:len(events)-1] {
		if e.Status.Finished() {
			t.Errorf("finished event before the last one: %+v", e)
		}
	}
}

func TestAnalyzeFileNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crlf.rb")
	if err := os.WriteFile(path, []byte("\ufeffdef a\r\n  x(\r\nend\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := AnalyzeFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks) != 1 || res.Blocks[0].Text() != "  x(\n" {
		t.Fatalf("blocks = %v", res.Blocks)
	}
	if res.Path != path {
		t.Errorf("path = %q", res.Path)
	}
}

func TestAnalyzeFileMissing(t *testing.T) {
	_, err := AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.rb"), Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not exist", err)
	}
}

func TestRecordDir(t *testing.T) {
	dir := t.TempDir()
	if _, err := AnalyzeSource(context.Background(), "a.rb", "def a\n  x(\nend\n", Options{RecordDir: dir}); err != nil {
		t.Fatal(err)
	}
	runs, err := os.ReadDir(dir)
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs = %v, %v", runs, err)
	}
	steps, err := os.ReadDir(filepath.Join(dir, runs[0].Name()))
	if err != nil || len(steps) == 0 {
		t.Fatalf("steps = %v, %v", steps, err)
	}
}

func counterValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

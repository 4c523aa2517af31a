package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeFile, true},
		{LevelPhase, ScopeSearch, false},
		{LevelDetail, ScopeSearch, true},
		{LevelDetail, ScopeStep, false},
		{LevelDebug, ScopeStep, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	if l, err := ParseLevel("DEBUG"); err != nil || l != LevelDebug {
		t.Errorf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel accepted garbage")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Errorf("ParseMode = %v, %v", m, err)
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Errorf("ParseFormat = %v, %v", f, err)
	}
}

func TestStreamSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	span := Begin(tr, ScopeFile, "analyze", 0)
	Point(tr, ScopeStep, "push", "1-3", span.ID(), map[string]string{"valid": "false"})
	span.WithExtra("blocks", "1").End("done")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d events:\n%s", len(lines), buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev["kind"] != "point" || ev["scope"] != "step" || ev["name"] != "push" {
		t.Errorf("point event = %v", ev)
	}
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev["kind"] != "end" || ev["detail"] != "done" {
		t.Errorf("end event = %v", ev)
	}
}

func TestLevelFiltersSteps(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	Point(tr, ScopeStep, "push", "", 0, nil)
	if buf.Len() != 0 {
		t.Errorf("step event emitted at phase level: %q", buf.String())
	}
	Begin(tr, ScopeFile, "analyze", 0).End("")
	if !strings.Contains(buf.String(), "→ analyze") || !strings.Contains(buf.String(), "← analyze") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeStep, Name: name})
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Errorf("snapshot = %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("dump = %q", buf.String())
	}
}

func TestNewModes(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off tracer: %v %v", tr, err)
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelDebug, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Point(tr, ScopeDriver, "start", "", 0, nil)
	ring := RingOf(tr)
	if ring == nil || len(ring.Snapshot()) != 1 || buf.Len() == 0 {
		t.Errorf("both mode did not reach ring and stream")
	}
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop || ParentFrom(ctx) != 0 {
		t.Error("empty context must give Nop and no parent")
	}
	r := NewRingTracer(4, LevelDebug)
	ctx = WithTracer(ctx, r)
	if FromContext(ctx) != Tracer(r) {
		t.Error("tracer lost in context")
	}

	span := Begin(r, ScopeDriver, "check", 0)
	child := WithParent(ctx, span)
	if ParentFrom(child) != span.ID() {
		t.Errorf("parent = %d, want %d", ParentFrom(child), span.ID())
	}
	// выключенный span не меняет контекст
	if off := WithParent(ctx, Begin(Nop, ScopeDriver, "x", 0)); ParentFrom(off) != 0 {
		t.Error("disabled span became a parent")
	}
}

func TestHeartbeat(t *testing.T) {
	r := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(r, time.Millisecond, func() string { return "2/5 files" })
	deadline := time.Now().Add(2 * time.Second)
	for len(r.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	events := r.Snapshot()
	if len(events) == 0 {
		t.Fatal("no heartbeat emitted")
	}
	if events[0].Kind != KindHeartbeat || events[0].Extra["status"] != "2/5 files" {
		t.Errorf("event = %+v", events[0])
	}
	if StartHeartbeat(Nop, time.Millisecond, nil) != nil {
		t.Error("heartbeat started for disabled tracer")
	}
}

func TestRingSubtree(t *testing.T) {
	r := NewRingTracer(32, LevelDebug)
	check := Begin(r, ScopeDriver, "check", 0)
	other := Begin(r, ScopeDriver, "watch", 0)
	file := Begin(r, ScopeFile, "analyze", check.ID())
	Point(r, ScopeStep, "push", "2-3", file.ID(), nil)
	Point(r, ScopeStep, "push", "9-9", other.ID(), nil)
	file.End("")
	other.End("")
	check.End("")

	var names []string
	for _, ev := range r.Subtree(check.ID()) {
		names = append(names, ev.Kind.String()+":"+ev.Name)
	}
	want := "begin:check begin:analyze point:push end:analyze end:check"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("subtree = %q, want %q", got, want)
	}

	var buf bytes.Buffer
	if err := r.WriteSubtree(&buf, file.ID(), FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 || strings.Contains(buf.String(), "watch") {
		t.Errorf("file subtree = %q", buf.String())
	}
}

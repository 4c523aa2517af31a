package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last events in memory so that a timed-out or crashed
// search can be inspected after the fact.
type RingTracer struct {
	mu     sync.RWMutex
	buf    []Event
	next   int // позиция следующей записи
	stored int
	level  Level
}

// NewRingTracer keeps up to capacity events (4096 when capacity <= 0).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

// Emit stores ev, overwriting the oldest event when the ring is full.
// Heartbeats are kept at every level.
func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf[t.next] = *ev
	t.next = (t.next + 1) % len(t.buf)
	t.stored = min(t.stored+1, len(t.buf))
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Event, 0, t.stored)
	start := (t.next - t.stored + len(t.buf)) % len(t.buf)
	for i := range t.stored {
		out = append(out, t.buf[(start+i)%len(t.buf)])
	}
	return out
}

// Subtree returns the stored events of span root and of every span below it.
// Spans whose begin event was overwritten cannot be attributed and are left out.
func (t *RingTracer) Subtree(root uint64) []Event {
	events := t.Snapshot()
	inside := map[uint64]bool{root: true}
	out := events[:0:0]
	for _, ev := range events {
		switch {
		case ev.Kind == KindSpanBegin && inside[ev.ParentID]:
			inside[ev.SpanID] = true
		case ev.Kind == KindPoint && inside[ev.ParentID]:
		case ev.SpanID != 0 && inside[ev.SpanID]:
		default:
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Dump writes the stored events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	return writeEvents(w, t.Snapshot(), format)
}

func writeEvents(w io.Writer, events []Event, format Format) error {
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

// WriteSubtree writes Subtree(root) to w.
func (t *RingTracer) WriteSubtree(w io.Writer, root uint64, format Format) error {
	return writeEvents(w, t.Subtree(root), format)
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }

package trace

import (
	"context"
	"strconv"
	"time"
)

// Probe describes what the process is doing when a heartbeat fires, for
// example "3/10 files". An empty result is fine.
type Probe func() string

// Heartbeat emits a liveness event at a fixed interval. Heartbeats without
// span ends in between point at a search that crawls through a pathological input.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat emits heartbeats to t every interval until Stop. It returns
// nil when t is disabled or interval is not positive; Stop on nil is a no-op.
func StartHeartbeat(t Tracer, interval time.Duration, probe Probe) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.run(ctx, t, interval, probe)
	return h
}

func (h *Heartbeat) run(ctx context.Context, t Tracer, interval time.Duration, probe Probe) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var beat uint64
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			beat++
			ev := &Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    getGoroutineID(),
				Name:   "heartbeat",
				Detail: "#" + strconv.FormatUint(beat, 10),
			}
			if probe != nil {
				if status := probe(); status != "" {
					ev.Extra = map[string]string{"status": status}
				}
			}
			t.Emit(ev)
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}

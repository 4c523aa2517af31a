package progress

import (
	"fmt"
	"sync/atomic"
)

// Tally counts files by outcome. The zero value is ready to use.
type Tally struct {
	queued   atomic.Int64
	finished atomic.Int64
	invalid  atomic.Int64
}

func (t *Tally) OnEvent(evt Event) {
	if evt.File == "" {
		return
	}
	switch {
	case evt.Status == StatusQueued:
		t.queued.Add(1)
	case evt.Status.Finished():
		t.finished.Add(1)
		if evt.Status == StatusInvalid {
			t.invalid.Add(1)
		}
	}
}

// Finished returns the number of files with a final event.
func (t *Tally) Finished() int64 { return t.finished.Load() }

// Invalid returns the number of files found to have syntax errors.
func (t *Tally) Invalid() int64 { return t.invalid.Load() }

// String reads "3/10 files, 1 invalid"; single files are never queued, so
// the total is omitted for them.
func (t *Tally) String() string {
	done, bad := t.finished.Load(), t.invalid.Load()
	if queued := t.queued.Load(); queued > 0 {
		return fmt.Sprintf("%d/%d files, %d invalid", done, queued, bad)
	}
	return fmt.Sprintf("%d files, %d invalid", done, bad)
}

type tee []Sink

func (t tee) OnEvent(evt Event) {
	for _, s := range t {
		s.OnEvent(evt)
	}
}

// Tee delivers every event to each non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	out := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

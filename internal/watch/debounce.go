package watch

import (
	"sync"
	"time"
)

// Debouncer delays a path until no new event for it arrived during the window.
// Each path has its own timer; only the path is delivered, once per burst.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timers  map[string]*pending
	onFlush func(path string)
	stopped bool
	seq     uint64
}

// pending is the timer of one path; seq tells a stale timer from the current one.
type pending struct {
	timer *time.Timer
	seq   uint64
}

// NewDebouncer calls onFlush from a timer goroutine when a path settles.
func NewDebouncer(window time.Duration, onFlush func(path string)) *Debouncer {
	return &Debouncer{
		window:  window,
		timers:  make(map[string]*pending),
		onFlush: onFlush,
	}
}

// Add restarts the timer of path.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if p, ok := d.timers[path]; ok {
		p.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timers[path] = &pending{
		timer: time.AfterFunc(d.window, func() { d.flush(path, seq) }),
		seq:   seq,
	}
}

func (d *Debouncer) flush(path string, seq uint64) {
	d.mu.Lock()
	if p, ok := d.timers[path]; !ok || p.seq != seq || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.timers, path)
	d.mu.Unlock()

	// вне блокировки: onFlush может снова вызвать Add
	d.onFlush(path)
}

// Stop drops every pending path. Add is ignored afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for path, p := range d.timers {
		p.timer.Stop()
		delete(d.timers, path)
	}
}

// Pending returns the number of paths waiting for their window to pass.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

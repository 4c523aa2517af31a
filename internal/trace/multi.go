package trace

import "errors"

// MultiTracer sends every event to several tracers, typically a stream and a ring.
type MultiTracer struct {
	level   Level
	targets []Tracer
}

func NewMultiTracer(level Level, targets ...Tracer) *MultiTracer {
	return &MultiTracer{level: level, targets: targets}
}

// Emit gives each target its own copy; targets may keep the pointer.
func (t *MultiTracer) Emit(ev *Event) {
	for _, target := range t.targets {
		dup := *ev
		target.Emit(&dup)
	}
}

func (t *MultiTracer) Flush() error {
	return t.each(Tracer.Flush)
}

func (t *MultiTracer) Close() error {
	return t.each(Tracer.Close)
}

func (t *MultiTracer) each(op func(Tracer) error) error {
	var errs []error
	for _, target := range t.targets {
		errs = append(errs, op(target))
	}
	return errors.Join(errs...)
}

// Ring returns the first RingTracer target.
func (t *MultiTracer) Ring() *RingTracer {
	for _, target := range t.targets {
		if r, ok := target.(*RingTracer); ok {
			return r
		}
	}
	return nil
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }

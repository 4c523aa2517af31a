package driver

import (
	"time"

	"faultline/internal/observ"
	"faultline/internal/progress"
)

// phaseObserver times the phases of one file and reports them to the progress sink.
type phaseObserver struct {
	file    string
	sink    progress.Sink
	timer   *observ.Timer // nil without --timings
	started time.Time
}

func newPhaseObserver(file string, sink progress.Sink, timings bool) *phaseObserver {
	p := &phaseObserver{file: file, sink: sink, started: time.Now()}
	if timings {
		p.timer = observ.NewTimer()
	}
	return p
}

// begin announces stage and starts the phase name; the returned func ends it.
func (p *phaseObserver) begin(stage progress.Stage, name string) func(note string) {
	progress.Emit(p.sink, progress.Event{
		File:    p.file,
		Stage:   stage,
		Status:  progress.StatusWorking,
		Elapsed: time.Since(p.started),
	})
	if p.timer == nil {
		return func(string) {}
	}
	return p.timer.Track(name)
}

// finish emits the final event of the file.
func (p *phaseObserver) finish(stage progress.Stage, status progress.Status, blocks int, err error) {
	progress.Emit(p.sink, progress.Event{
		File:    p.file,
		Stage:   stage,
		Status:  status,
		Blocks:  blocks,
		Err:     err,
		Elapsed: time.Since(p.started),
	})
}

func (p *phaseObserver) report() *observ.Report {
	if p.timer == nil {
		return nil
	}
	r := p.timer.Report()
	return &r
}

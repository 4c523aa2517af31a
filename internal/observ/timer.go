// Package observ measures the phases of one analysis (load, lines, search,
// explain) for --timings output.
package observ

import (
	"cmp"
	"slices"
	"time"
)

type phase struct {
	name  string
	start time.Time
	dur   time.Duration
	note  string
}

// Timer records phases in the order they start. Each analysis owns one;
// it is not goroutine-safe.
type Timer struct {
	phases []phase
}

func NewTimer() *Timer { return &Timer{} }

// Track starts the phase name and returns the func that ends it with a note.
// Ending twice keeps the first duration.
func (t *Timer) Track(name string) func(note string) {
	t.phases = append(t.phases, phase{name: name, start: time.Now()})
	idx := len(t.phases) - 1
	return func(note string) {
		p := &t.phases[idx]
		if p.dur == 0 {
			p.dur = time.Since(p.start)
			p.note = note
		}
	}
}

// PhaseReport is one phase in --timings output.
type PhaseReport struct {
	Name       string  `json:"name" yaml:"name"`
	DurationMS float64 `json:"duration_ms" yaml:"duration_ms"`
	Note       string  `json:"note,omitempty" yaml:"note,omitempty"`
}

// Report is the serializable form of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms" yaml:"total_ms"`
	Phases  []PhaseReport `json:"phases" yaml:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	for _, p := range t.phases {
		ms := millis(p.dur)
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: ms, Note: p.note})
		r.TotalMS += ms
	}
	return r
}

// Sum adds up reports phase by phase, keeping the order in which phase names
// first appear. Notes are dropped: they describe single files.
func Sum(reports ...Report) Report {
	var out Report
	for _, r := range reports {
		for _, p := range r.Phases {
			i := slices.IndexFunc(out.Phases, func(q PhaseReport) bool { return q.Name == p.Name })
			if i < 0 {
				out.Phases = append(out.Phases, PhaseReport{Name: p.Name})
				i = len(out.Phases) - 1
			}
			out.Phases[i].DurationMS += p.DurationMS
		}
		out.TotalMS += r.TotalMS
	}
	return out
}

// Slowest returns the phase that took longest; ok is false without phases.
func (r Report) Slowest() (PhaseReport, bool) {
	if len(r.Phases) == 0 {
		return PhaseReport{}, false
	}
	return slices.MaxFunc(r.Phases, func(a, b PhaseReport) int {
		return cmp.Compare(a.DurationMS, b.DurationMS)
	}), true
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Package progress carries per-file analysis events from the driver to
// whoever displays them.
package progress

import "time"

// Stage describes a phase of one file's analysis.
type Stage string

const (
	// StageLoad reads and splits the file.
	StageLoad Stage = "load"
	// StageSearch runs the invalid block search.
	StageSearch Stage = "search"
	// StageExplain classifies the errors.
	StageExplain Stage = "explain"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is running.
	StatusWorking Status = "working"
	// StatusDone indicates the file was analyzed and parses.
	StatusDone Status = "done"
	// StatusInvalid indicates the file was analyzed and has syntax errors.
	StatusInvalid Status = "invalid"
	// StatusError indicates the analysis itself failed.
	StatusError Status = "error"
)

// Finished reports whether no further events follow for the file.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusInvalid || s == StatusError
}

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Blocks  int
	Err     error
	Elapsed time.Duration
}

// Sink consumes progress events. Implementations must be goroutine-safe.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// FuncSink adapts a function to Sink.
type FuncSink func(Event)

func (f FuncSink) OnEvent(evt Event) { f(evt) }

// Emit sends evt to sink when there is one.
func Emit(sink Sink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

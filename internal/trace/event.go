package trace

import "time"

// Kind is what an Event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// Scope is the granularity of an event. Coarser scopes have lower values,
// so a Level admits a prefix of them.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // a command or a directory walk
	ScopeFile                    // one analyzed file
	ScopeSearch                  // seed and expand passes
	ScopeStep                    // one block taken from the frontier
)

var scopeNames = [...]string{"unknown", "driver", "file", "search", "step"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // process-wide, monotonic
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for a root span
	GID      uint64 // goroutine that emitted the event
	Name     string // "check", "analyze", "seed", "expand", ...
	Detail   string
	Extra    map[string]string
}

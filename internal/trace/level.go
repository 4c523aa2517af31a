package trace

import (
	"fmt"
	"strings"
)

// Level controls how much is traced. Each level includes the ones below it.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing streamed; the ring is dumped on timeouts
	LevelPhase        // commands and files
	LevelDetail       // search passes
	LevelDebug        // every block decision
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel parses the --trace-level spelling.
func ParseLevel(s string) (Level, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if name == want {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// finest is the most detailed scope recorded at l, 0 for none.
func (l Level) finest() Scope {
	switch l {
	case LevelPhase:
		return ScopeFile
	case LevelDetail:
		return ScopeSearch
	case LevelDebug:
		return ScopeStep
	}
	return 0
}

// ShouldEmit reports whether events of scope are recorded at l.
func (l Level) ShouldEmit(scope Scope) bool {
	return scope <= l.finest()
}

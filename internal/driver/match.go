package driver

import (
	"fmt"
	"path"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher selects files by doublestar include and exclude patterns.
// Patterns are matched against the slash-separated path relative to the
// analyzed directory and against the base name.
type Matcher struct {
	include []string
	exclude []string
}

// NewMatcher validates the patterns. An empty include list means DefaultInclude.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, p := range include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return &Matcher{include: include, exclude: exclude}, nil
}

// Match reports whether rel is included and not excluded.
func (m *Matcher) Match(rel string) bool {
	included := false
	for _, p := range m.include {
		if matchPattern(p, rel) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range m.exclude {
		if matchPattern(p, rel) {
			return false
		}
	}
	return true
}

func matchPattern(pattern, rel string) bool {
	if ok, _ := doublestar.Match(pattern, rel); ok {
		return true
	}
	ok, _ := doublestar.Match(pattern, path.Base(rel))
	return ok
}

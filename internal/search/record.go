package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"faultline/internal/document"
)

// State is the phase of the main loop.
type State uint8

const (
	StateSeeding State = iota + 1
	StateExpanding
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSeeding:
		return "seeding"
	case StateExpanding:
		return "expanding"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Step is one observed decision of the engine.
type Step struct {
	Tick   int
	State  State
	Block  *Block // nil for StateDone
	Valid  bool
	Active []*Block
}

// Recorder observes the search. Errors are logged and otherwise ignored.
type Recorder interface {
	Record(doc *document.Document, step Step) error
}

// DirRecorder writes one text snapshot of the document per step into
// <base>/<run-id>/. Block lines are marked with '❯', hidden lines with '·'.
type DirRecorder struct {
	dir string
	n   int
}

// NewDirRecorder creates a fresh run directory under base.
func NewDirRecorder(base string) (*DirRecorder, error) {
	dir := filepath.Join(base, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create record dir: %w", err)
	}
	return &DirRecorder{dir: dir}, nil
}

// Dir is the run directory.
func (r *DirRecorder) Dir() string { return r.dir }

func (r *DirRecorder) Record(doc *document.Document, step Step) error {
	r.n++
	name := fmt.Sprintf("%04d-%s", r.n, step.State)
	if step.Block != nil {
		name += fmt.Sprintf("-%d-%d", step.Block.Start()+1, step.Block.End()+1)
		if step.Valid {
			name += "-valid"
		}
	}
	return os.WriteFile(filepath.Join(r.dir, name+".txt"), []byte(Snapshot(doc, step.Block)), 0o644)
}

// Snapshot renders doc with b's lines marked.
func Snapshot(doc *document.Document, b *Block) string {
	var sb strings.Builder
	for _, l := range doc.Lines() {
		mark := "  "
		switch {
		case b != nil && b.Covers(l.Index):
			mark = "❯ "
		case l.Hidden():
			mark = "· "
		}
		text := strings.TrimRight(l.Text(), "\n")
		fmt.Fprintf(&sb, "%s%4d  %s\n", mark, l.Index+1, strings.ReplaceAll(text, "\n", "\n        "))
	}
	return sb.String()
}

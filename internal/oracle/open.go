package oracle

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Kinds accepted by Open.
const (
	KindBuiltin    = "builtin"
	KindRuby       = "ruby"
	KindCommand    = "command"
	KindTreeSitter = "tree-sitter"
)

// NormalizeKind maps accepted spellings to the Kind constants.
func NormalizeKind(kind string) string {
	switch k := strings.ToLower(strings.TrimSpace(kind)); k {
	case "treesitter", "tree_sitter":
		return KindTreeSitter
	default:
		return k
	}
}

// Options selects and wraps an oracle.
type Options struct {
	Kind     string
	Command  []string // for KindCommand
	Timeout  time.Duration
	Cache    bool   // persistent verdict cache for external oracles
	CacheDir string // default DefaultCacheDir()
	Logger   *slog.Logger
}

// Open builds the oracle described by opts. Every oracle is wrapped in Memo;
// external commands are additionally backed by DiskCache when opts.Cache is set.
func Open(opts Options) (Oracle, error) {
	var (
		o    Oracle
		name string
	)
	switch opts.Kind = NormalizeKind(opts.Kind); opts.Kind {
	case "", KindBuiltin:
		return NewMemo(NewBuiltin()), nil
	case KindRuby:
		c := NewCommand()
		if opts.Timeout > 0 {
			c.Timeout = opts.Timeout
		}
		o, name = c, c.name()
	case KindCommand:
		if len(opts.Command) == 0 {
			return nil, fmt.Errorf("oracle %q needs a command", opts.Kind)
		}
		c := NewCommand(opts.Command...)
		if opts.Timeout > 0 {
			c.Timeout = opts.Timeout
		}
		o, name = c, c.name()
	case KindTreeSitter:
		ts, err := NewTreeSitter()
		if err != nil {
			return nil, err
		}
		return NewMemo(ts), nil
	default:
		return nil, fmt.Errorf("unknown oracle %q (want %s, %s, %s or %s)",
			opts.Kind, KindBuiltin, KindRuby, KindCommand, KindTreeSitter)
	}
	if opts.Cache {
		dc, err := OpenDiskCache(o, name, opts.CacheDir, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("open oracle cache: %w", err)
		}
		o = dc
	}
	return NewMemo(o), nil
}

package driver

import (
	"log/slog"
	"time"

	"faultline/internal/metrics"
	"faultline/internal/oracle"
	"faultline/internal/progress"
	"faultline/internal/search"
	"faultline/internal/trace"
)

// DefaultTimeout is the wall-clock budget of one search when Options.Timeout is 0.
const DefaultTimeout = time.Second

// DefaultInclude selects the files AnalyzeDir looks at when Options.Include is empty.
var DefaultInclude = []string{"**/*.rb"}

// Options configures an analysis. The zero value analyzes with the builtin
// oracle under DefaultTimeout.
type Options struct {
	// Oracle decides validity. Nil means a memoized oracle.Builtin.
	Oracle oracle.Oracle
	// Timeout bounds each search. 0 means DefaultTimeout, a negative value disables it.
	Timeout time.Duration
	// Search is handed to the engine; Logger, Tracer and TraceParent are filled in when unset.
	Search search.Config
	// RecordDir, when set, gets a step-by-step snapshot directory per analyzed file.
	RecordDir string
	// MaxDiagnostics caps each result bag; 0 means unlimited.
	MaxDiagnostics int
	// ProblemNotes is the number of parser problems attached to each block (default 3).
	ProblemNotes int

	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  *metrics.Metrics
	Progress progress.Sink

	// Include and Exclude are doublestar patterns relative to the analyzed directory.
	Include []string
	Exclude []string
	// Jobs limits parallel searches in AnalyzeDir; 0 means GOMAXPROCS.
	Jobs int

	EnableTimings bool
	// BaseDir is used for relative paths in results. Empty means the analyzed directory.
	BaseDir string

	prepared bool
}

func (o Options) withDefaults() Options {
	if o.prepared {
		return o
	}
	if o.Oracle == nil {
		o.Oracle = oracle.NewMemo(oracle.NewBuiltin())
	}
	o.Oracle = metrics.InstrumentOracle(o.Oracle, o.Metrics)
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Tracer == nil {
		o.Tracer = trace.Nop
	}
	if o.Search.Logger == nil {
		o.Search.Logger = o.Logger
	}
	if o.Search.Tracer == nil {
		o.Search.Tracer = o.Tracer
	}
	if o.ProblemNotes == 0 {
		o.ProblemNotes = 3
	}
	if len(o.Include) == 0 {
		o.Include = DefaultInclude
	}
	o.prepared = true
	return o
}

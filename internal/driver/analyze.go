package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fortio.org/safecast"

	"faultline/internal/diag"
	"faultline/internal/document"
	"faultline/internal/explain"
	"faultline/internal/metrics"
	"faultline/internal/observ"
	"faultline/internal/oracle"
	"faultline/internal/progress"
	"faultline/internal/search"
	"faultline/internal/source"
	"faultline/internal/trace"
)

// ErrSearchTimeout is returned when a search exceeds Options.Timeout.
// Nothing the abandoned search found is reported.
var ErrSearchTimeout = errors.New("search timed out")

// Stats summarizes one search.
type Stats struct {
	Ticks       int
	OracleCalls int64
	Minimal     bool
	Stalled     bool
}

// Result is the analysis of one file.
type Result struct {
	Path    string
	FileSet *source.FileSet
	File    *source.File
	// Document is a fresh view of the file for rendering; every line is visible.
	Document *document.Document
	// Blocks is the minimal invalid cover, sorted by start line. Their lines
	// belong to the document the search ran on, not to Document.
	Blocks      []*search.Block
	Explanation explain.Explanation
	Bag         *diag.Bag
	Timing      *observ.Report
	Stats       Stats
}

// Valid reports whether the file parses.
func (r *Result) Valid() bool {
	return len(r.Blocks) == 0 && (r.Bag == nil || !r.Bag.HasErrors())
}

// AnalyzeSource analyzes in-memory text under the given display name.
func AnalyzeSource(ctx context.Context, name, src string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	fs := source.NewFileSet()
	if opts.BaseDir != "" {
		fs.SetBaseDir(opts.BaseDir)
	}
	id := fs.AddVirtual(name, []byte(src))
	return analyze(ctx, fs, id, opts, nil)
}

// AnalyzeFile loads path (BOM and CRLF normalized) and analyzes it.
func AnalyzeFile(ctx context.Context, path string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	obs := newPhaseObserver(path, opts.Progress, opts.EnableTimings)

	end := obs.begin(progress.StageLoad, "load")
	fs := source.NewFileSet()
	if opts.BaseDir != "" {
		fs.SetBaseDir(opts.BaseDir)
	}
	id, err := fs.Load(path)
	end("")
	if err != nil {
		opts.Metrics.FileAnalyzed(metrics.ResultError)
		obs.finish(progress.StageLoad, progress.StatusError, 0, err)
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return analyze(ctx, fs, id, opts, obs)
}

func analyze(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options, obs *phaseObserver) (*Result, error) {
	file := fs.Get(id)
	if obs == nil {
		obs = newPhaseObserver(file.Path, opts.Progress, opts.EnableTimings)
	}
	span := trace.Begin(opts.Tracer, trace.ScopeFile, "analyze", trace.ParentFrom(ctx))
	defer span.End(file.Path)

	res := &Result{
		Path:    file.Path,
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	whole := source.Span{File: id}

	endLines := obs.begin(progress.StageLoad, "lines")
	res.Document = document.FromFile(file)
	endLines("lines=" + strconv.Itoa(res.Document.Len()))

	endSearch := obs.begin(progress.StageSearch, "search")
	started := time.Now()
	sr, err := runSearch(ctx, file, opts, span.ID())
	if err != nil {
		endSearch("failed")
		if !errors.Is(err, ErrSearchTimeout) {
			opts.Metrics.FileAnalyzed(metrics.ResultError)
			obs.finish(progress.StageSearch, progress.StatusError, 0, err)
			return nil, fmt.Errorf("analyze %s: %w", file.Path, err)
		}
		opts.Metrics.SearchTimedOut()
		opts.Metrics.FileAnalyzed(metrics.ResultTimeout)
		opts.Logger.Warn("search timed out", "path", file.Path, "timeout", opts.Timeout)
		diag.ReportError(reporter, diag.SrchTimeout, whole,
			fmt.Sprintf("search timed out after %s", opts.Timeout)).Emit()
		res.finishTimings(obs)
		span.WithExtra("timeout", "true")
		obs.finish(progress.StageSearch, progress.StatusError, 0, err)
		return res, err
	}
	opts.Metrics.SearchFinished(time.Since(started))
	endSearch(fmt.Sprintf("ticks=%d oracle=%d", sr.Ticks, sr.OracleCalls))

	res.Blocks = sr.Blocks
	res.Stats = Stats{
		Ticks:       sr.Ticks,
		OracleCalls: sr.OracleCalls,
		Minimal:     sr.Minimal,
		Stalled:     sr.Stalled,
	}

	if len(res.Blocks) > 0 {
		endExplain := obs.begin(progress.StageExplain, "explain")
		expl, err := explain.Explain(res.Document, opts.Oracle)
		if err != nil {
			opts.Logger.Warn("parser explanation unavailable", "path", file.Path, "err", err)
		}
		res.Explanation = expl
		reportBlocks(reporter, res.Blocks, expl, opts)
		endExplain(strings.Join(expl.Missing, ","))
	}
	if !res.Stats.Minimal {
		diag.ReportWarning(reporter, diag.SrchNotMinimal, whole,
			"no minimal set of invalid blocks found; reporting every invalid block").Emit()
	}
	if res.Stats.Stalled {
		diag.ReportWarning(reporter, diag.SrchStall, whole,
			"search heuristics hit a safety limit; the result may be wider than necessary").Emit()
	}
	res.finishTimings(obs)

	status, result := progress.StatusDone, metrics.ResultValid
	if len(res.Blocks) > 0 {
		status, result = progress.StatusInvalid, metrics.ResultInvalid
	}
	opts.Metrics.FileAnalyzed(result)
	obs.finish(progress.StageExplain, status, len(res.Blocks), nil)
	span.WithExtra("blocks", strconv.Itoa(len(res.Blocks)))
	return res, nil
}

type searchOutcome struct {
	res *search.Result
	err error
}

// runSearch runs the engine on its own document so that a search abandoned on
// timeout shares no state with the caller.
func runSearch(ctx context.Context, file *source.File, opts Options, parent uint64) (*search.Result, error) {
	cfg := opts.Search
	cfg.TraceParent = parent
	if opts.RecordDir != "" && cfg.Recorder == nil {
		rec, err := search.NewDirRecorder(opts.RecordDir)
		if err != nil {
			return nil, err
		}
		opts.Logger.Info("recording search", "path", file.Path, "dir", rec.Dir())
		cfg.Recorder = rec
	}
	doc := document.FromFile(file)
	if opts.Timeout < 0 {
		return search.New(doc, oracle.Bind(ctx, opts.Oracle), cfg).Run()
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	// цикл поиска не прерывается сам: брошенный поиск падает на следующем вызове oracle
	bound := oracle.Bind(ctx, opts.Oracle)
	done := make(chan searchOutcome, 1)
	go func() {
		res, err := search.New(doc, bound, cfg).Run()
		done <- searchOutcome{res: res, err: err}
	}()
	select {
	case out := <-done:
		if out.err != nil && ctx.Err() != nil {
			return nil, searchAbandoned(ctx, opts.Timeout)
		}
		return out.res, out.err
	case <-ctx.Done():
		return nil, searchAbandoned(ctx, opts.Timeout)
	}
}

func searchAbandoned(ctx context.Context, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrSearchTimeout, timeout)
	}
	return ctx.Err()
}

func codeFor(c explain.Category) diag.Code {
	switch c {
	case explain.CategoryMissingEnd:
		return diag.SynMissingEnd
	case explain.CategoryMissingKeyword:
		return diag.SynMissingKeyword
	case explain.CategoryMissingCloser:
		return diag.SynMissingCloser
	case explain.CategoryMissingOpener:
		return diag.SynMissingOpener
	default:
		return diag.SynInvalidBlock
	}
}

// reportBlocks emits one error per block. The parser's own complaints about the
// block text become notes when the oracle can explain itself.
func reportBlocks(r diag.Reporter, blocks []*search.Block, expl explain.Explanation, opts Options) {
	msg := strings.Join(expl.Reasons, "; ")
	if msg == "" {
		msg = "syntax error"
	}
	code := codeFor(expl.Primary())
	ex, canExplain := opts.Oracle.(oracle.Explainer)

	for _, b := range blocks {
		rb := diag.ReportError(r, code, b.Span(), msg)
		if canExplain && opts.ProblemNotes > 0 {
			rep, err := ex.Check(b.Text())
			if err != nil {
				opts.Logger.Warn("block explanation failed", "block", b.String(), "err", err)
			}
			for _, p := range rep.Problems[:min(opts.ProblemNotes, len(rep.Problems))] {
				rb.WithNote(lineSpan(b, p.Line), p.Msg)
			}
		}
		rb.Emit()
	}
}

// lineSpan maps a 1-based line of the block text back to a span in the file.
// Unknown lines map to the whole block.
func lineSpan(b *search.Block, line int) source.Span {
	whole := b.Span()
	if line <= 0 {
		return whole
	}
	text := b.Text()
	off := 0
	for range line - 1 {
		j := strings.IndexByte(text[off:], '\n')
		if j < 0 {
			return whole
		}
		off += j + 1
	}
	end := len(text)
	if j := strings.IndexByte(text[off:], '\n'); j >= 0 {
		end = off + j
	}
	start, err := safecast.Conv[uint32](off)
	if err != nil {
		return whole
	}
	stop, err := safecast.Conv[uint32](end)
	if err != nil {
		return whole
	}
	return source.Span{File: whole.File, Start: whole.Start + start, End: whole.Start + stop}
}

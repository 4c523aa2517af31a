package search

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"faultline/internal/document"
	"faultline/internal/oracle"
	"faultline/internal/trace"
)

// Result is the outcome of one search.
type Result struct {
	// Blocks is the minimal set of invalid blocks, sorted by start line.
	Blocks []*Block
	// Lines are all document lines, for rendering.
	Lines []*document.Line
	// Ticks counts main loop iterations.
	Ticks int
	// OracleCalls counts every question sent to the oracle.
	OracleCalls int64
	// Minimal is false when the cover search gave up and returned every invalid block.
	Minimal bool
	// Stalled is set when a safety cap fired.
	Stalled bool
}

// Engine runs the search over one document.
type Engine struct {
	doc      *document.Document
	oracle   *oracle.Counting
	cfg      Config
	frontier *Frontier
	seeder   *Seeder
	expander *Expander

	ticks   int
	stalled bool
	span    *trace.Span
}

// New prepares a search. Lines already hidden in doc count as explained.
func New(doc *document.Document, o oracle.Oracle, cfg Config) *Engine {
	cfg = cfg.withDefaults(doc.Len())
	counting := oracle.NewCounting(o)
	e := &Engine{
		doc:    doc,
		oracle: counting,
		cfg:    cfg,
	}
	e.frontier = NewFrontier(doc, counting, cfg.Prioritize)
	e.seeder = NewSeeder(doc.Lines(), counting, func(l *document.Line) bool {
		return e.frontier.Visited(l.Index)
	})
	e.expander = NewExpander(doc.Lines(), counting, cfg.Logger)
	e.expander.SetLimit(cfg.BalanceLimit)
	return e
}

// Frontier exposes the search state, for invariant checks between steps.
func (e *Engine) Frontier() *Frontier { return e.frontier }

// Run searches until the active blocks hold every syntax error, then reduces
// them to the minimal invalid cover. Oracle failures abort the search.
func (e *Engine) Run() (*Result, error) {
	e.span = trace.Begin(e.cfg.Tracer, trace.ScopeSearch, "search", e.cfg.TraceParent)
	defer func() {
		e.span.WithExtra("ticks", strconv.Itoa(e.ticks)).
			WithExtra("oracle_calls", strconv.FormatInt(e.oracle.Calls(), 10)).
			End("")
	}()

	for {
		done, err := e.Step()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	blocks, minimal, err := e.frontier.DetectInvalidBlocks(e.cfg.MaxCoverChecks)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(blocks, func(a, b *Block) int { return a.Start() - b.Start() })
	if !minimal && len(blocks) > 0 {
		e.cfg.Logger.Warn("no minimal cover found, reporting every invalid block", "blocks", len(blocks))
	}
	e.record(Step{Tick: e.ticks, State: StateDone, Active: e.frontier.Active()})

	return &Result{
		Blocks:      blocks,
		Lines:       e.doc.Lines(),
		Ticks:       e.ticks,
		OracleCalls: e.oracle.Calls(),
		Minimal:     minimal || len(blocks) == 0,
		Stalled:     e.stalled || e.expander.Stalls() > 0,
	}, nil
}

// Step runs one iteration of the main loop and reports whether the search is done.
func (e *Engine) Step() (bool, error) {
	holds, err := e.frontier.HoldsAllSyntaxErrors()
	if err != nil {
		return false, err
	}
	if holds {
		return true, nil
	}
	if e.ticks >= e.cfg.MaxTicks {
		e.stalled = true
		e.cfg.Logger.Warn("search stopped at tick limit",
			"err", ErrHeuristicStall,
			"ticks", e.ticks,
			"active", len(e.frontier.Active()))
		return true, nil
	}
	e.ticks++

	var progress bool
	if e.frontier.Expand() {
		progress, err = e.expandStep()
	} else {
		progress, err = e.seedStep()
	}
	if err != nil {
		return false, err
	}
	if !progress {
		e.frontier.ForceCheck()
	}
	return false, nil
}

// seedStep seeds every unvisited line at the current deepest indent.
func (e *Engine) seedStep() (bool, error) {
	first := e.frontier.NextIndentLine()
	if first == nil {
		return false, nil
	}
	indent := first.Indent()
	for {
		line := e.frontier.NextIndentLine()
		if line == nil || line.Indent() != indent {
			break
		}
		blocks, err := e.seeder.Seed(line)
		if err != nil {
			return false, fmt.Errorf("seed line %d: %w", line.Index+1, err)
		}
		for _, b := range blocks {
			if err := e.push(StateSeeding, b); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// expandStep grows the top block by one step.
func (e *Engine) expandStep() (bool, error) {
	b, err := e.frontier.Pop()
	if err != nil {
		return false, err
	}
	next, err := e.expander.Expand(b)
	if err != nil {
		return false, fmt.Errorf("expand %s: %w", b, err)
	}
	if err := e.push(StateExpanding, next); err != nil {
		return false, err
	}
	return next.Len() > b.Len(), nil
}

// push validates b, hides it when valid and hands it to the frontier.
func (e *Engine) push(state State, b *Block) error {
	valid, err := b.Valid(e.oracle)
	if err != nil {
		return err
	}
	if valid {
		b.Hide()
	}
	e.frontier.Push(b)

	if e.cfg.Tracer.Enabled() {
		trace.Point(e.cfg.Tracer, trace.ScopeStep, "push", b.String(), e.span.ID(), map[string]string{
			"state": state.String(),
			"valid": strconv.FormatBool(valid),
			"tick":  strconv.Itoa(e.ticks),
		})
	}
	e.record(Step{Tick: e.ticks, State: state, Block: b, Valid: valid, Active: e.frontier.Active()})
	return nil
}

func (e *Engine) record(step Step) {
	if e.cfg.Recorder == nil {
		return
	}
	if err := e.cfg.Recorder.Record(e.doc, step); err != nil {
		e.cfg.Logger.Warn("search recorder failed", slog.Any("err", err))
	}
}

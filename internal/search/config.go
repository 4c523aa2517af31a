package search

import (
	"log/slog"

	"faultline/internal/trace"
)

// Config is passed explicitly to New; the search reads no globals.
type Config struct {
	// Logger receives stall warnings. Nil discards.
	Logger *slog.Logger
	// Tracer receives search and step events. Nil means trace.Nop.
	Tracer trace.Tracer
	// TraceParent is the span the search span hangs under.
	TraceParent uint64
	// Recorder observes every step. It cannot change the outcome.
	Recorder Recorder
	// MaxTicks caps the main loop; 0 means n*n + 4n + 16 for n lines.
	MaxTicks int
	// BalanceLimit caps the steps of one balancing pass in the expander;
	// 0 means twice the number of lines. Hitting it marks the result stalled.
	BalanceLimit int
	// MaxCoverChecks caps the oracle calls spent on the minimal cover; 0 means 1024.
	MaxCoverChecks int
	// Prioritize assigns the primary sort key of a block in the frontier.
	// Higher values are expanded first. Nil means 0 for every block.
	Prioritize func(*Block) int
}

func (c Config) withDefaults(n int) Config {
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Tracer == nil {
		c.Tracer = trace.Nop
	}
	if c.MaxTicks <= 0 {
		c.MaxTicks = n*n + 4*n + 16
	}
	if c.BalanceLimit <= 0 {
		c.BalanceLimit = 2 * n
	}
	if c.MaxCoverChecks <= 0 {
		c.MaxCoverChecks = 1024
	}
	return c
}

package oracle

import (
	"context"
	"sync/atomic"
)

// Counting counts the calls that reach the wrapped oracle.
type Counting struct {
	next  Oracle
	calls atomic.Int64
}

// NewCounting wraps next.
func NewCounting(next Oracle) *Counting {
	return &Counting{next: next}
}

func (c *Counting) Valid(src string) (bool, error) {
	return c.ValidContext(context.Background(), src)
}

func (c *Counting) ValidContext(ctx context.Context, src string) (bool, error) {
	c.calls.Add(1)
	return ValidContext(ctx, c.next, src)
}

// Check forwards to the wrapped oracle when it can explain; it is not counted.
func (c *Counting) Check(src string) (Report, error) {
	return CheckContext(context.Background(), c.next, src)
}

func (c *Counting) CheckContext(ctx context.Context, src string) (Report, error) {
	return CheckContext(ctx, c.next, src)
}

// Calls returns the number of Valid calls so far.
func (c *Counting) Calls() int64 { return c.calls.Load() }

// Reset zeroes the counter.
func (c *Counting) Reset() { c.calls.Store(0) }

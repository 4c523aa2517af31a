package oracle

import (
	"context"
	"crypto/sha256"
	"sync"
)

// Memo caches verdicts in memory keyed by the sha256 of the text.
// Failures are never cached.
type Memo struct {
	next Oracle

	mu      sync.RWMutex
	entries map[[32]byte]bool
	hits    int64
}

// NewMemo wraps next.
func NewMemo(next Oracle) *Memo {
	return &Memo{next: next, entries: make(map[[32]byte]bool)}
}

func (m *Memo) Valid(src string) (bool, error) {
	return m.ValidContext(context.Background(), src)
}

func (m *Memo) ValidContext(ctx context.Context, src string) (bool, error) {
	key := sha256.Sum256([]byte(src))
	m.mu.RLock()
	v, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		m.mu.Lock()
		m.hits++
		m.mu.Unlock()
		return v, nil
	}
	v, err := ValidContext(ctx, m.next, src)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	m.entries[key] = v
	m.mu.Unlock()
	return v, nil
}

// Check is never cached.
func (m *Memo) Check(src string) (Report, error) {
	return m.CheckContext(context.Background(), src)
}

func (m *Memo) CheckContext(ctx context.Context, src string) (Report, error) {
	switch m.next.(type) {
	case Explainer, ContextExplainer:
		return CheckContext(ctx, m.next, src)
	}
	valid, err := m.ValidContext(ctx, src)
	return Report{Valid: valid}, err
}

// Hits returns how many calls were answered from the cache.
func (m *Memo) Hits() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits
}

// Len returns the number of cached verdicts.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

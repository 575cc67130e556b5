package revocation

import (
	"context"
	"sync"
	"time"

	"municipal-docs/internal/metrics"
)

// Memory is a process-local registry. A restart forgets every entry, so a
// revoked but unexpired credential becomes usable again; use Redis when that
// matters.
type Memory struct {
	expiry ExpiryFunc

	Metrics *metrics.Metrics
	Now     func() time.Time

	mu      sync.Mutex
	entries map[string]struct{}
}

func NewMemory(expiry ExpiryFunc) *Memory {
	return &Memory{
		expiry:  expiry,
		Now:     time.Now,
		entries: make(map[string]struct{}),
	}
}

func (m *Memory) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[token] = struct{}{}
	if len(m.entries) > Threshold {
		m.Metrics.ObserveSweep("threshold", m.sweepLocked())
	}
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[token]
	return ok, nil
}

func (m *Memory) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(), nil
}

func (m *Memory) Size(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func (m *Memory) sweepLocked() int {
	now := m.Now()
	removed := 0
	for tok := range m.entries {
		exp, ok := m.expiry(tok)
		if !ok || !exp.After(now) {
			delete(m.entries, tok)
			removed++
		}
	}
	return removed
}

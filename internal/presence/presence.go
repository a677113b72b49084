// Package presence tracks which users currently hold at least one live
// connection. The Redis tracker lets a user listing survive server restarts
// and, later, multiple server instances; deployments without Redis get an
// in-process tracker with the same contract.
package presence

import (
	"context"
	"sync"
)

// Tracker counts live connections per user.
type Tracker interface {
	Connected(ctx context.Context, userID string) error
	Disconnected(ctx context.Context, userID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// Memory is the in-process Tracker used when no Redis address is configured.
type Memory struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemory() *Memory {
	return &Memory{counts: make(map[string]int)}
}

func (m *Memory) Connected(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[userID]++
	return nil
}

func (m *Memory) Disconnected(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts[userID] <= 1 {
		delete(m.counts, userID)
	} else {
		m.counts[userID]--
	}
	return nil
}

func (m *Memory) IsOnline(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[userID] > 0, nil
}

// Package debounce holds the dirty-user sets behind debounced ERS recomputation.
package debounce

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/PabloGalante/paceful/internal/domain"
)

// Memory is a process-local dirty set. Suitable for a single API instance.
type Memory struct {
	mu    sync.Mutex
	dirty map[domain.UserID]struct{}
}

func NewMemory() *Memory {
	return &Memory{dirty: make(map[domain.UserID]struct{})}
}

func (m *Memory) Mark(_ context.Context, userID domain.UserID) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	m.mu.Lock()
	m.dirty[userID] = struct{}{}
	m.mu.Unlock()
	return nil
}

// Drain removes and returns up to max users, in user id order.
func (m *Memory) Drain(_ context.Context, max int) ([]domain.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.UserID, 0, len(m.dirty))
	for u := range m.dirty {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	for _, u := range out {
		delete(m.dirty, u)
	}
	return out, nil
}

// Pending reports how many users are waiting for a recompute.
func (m *Memory) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dirty)
}

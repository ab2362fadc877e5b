// Package state tracks each transaction identifier through
// observed -> enriching -> delivered|failed.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quotation-relay/internal/models"
)

var ErrInvalidTransition = errors.New("invalid state transition")

// Tracker records transaction states.
type Tracker interface {
	Transition(ctx context.Context, txID string, to models.TransactionState) error
	Get(ctx context.Context, txID string) (models.TransactionState, bool, error)
}

// CanTransition reports whether from -> to is allowed. A transaction seen
// again (page reload of the same quotation) restarts at observed.
func CanTransition(from, to models.TransactionState) bool {
	if to == models.StateObserved || from == "" {
		return true
	}
	switch from {
	case models.StateObserved:
		return to == models.StateEnriching || to.Terminal()
	case models.StateEnriching:
		return to.Terminal()
	default:
		return false
	}
}

type entry struct {
	state     models.TransactionState
	updatedAt time.Time
}

// MemoryTracker keeps states in process. Entries older than ttl are dropped
// on write.
type MemoryTracker struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryTracker(ttl time.Duration) *MemoryTracker {
	return &MemoryTracker{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryTracker) Transition(_ context.Context, txID string, to models.TransactionState) error {
	if txID == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evictLocked(now)

	from := m.entries[txID].state
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s for %s", ErrInvalidTransition, from, to, txID)
	}
	m.entries[txID] = entry{state: to, updatedAt: now}
	return nil
}

func (m *MemoryTracker) Get(_ context.Context, txID string) (models.TransactionState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[txID]
	if !ok || (m.ttl > 0 && m.now().Sub(e.updatedAt) > m.ttl) {
		return "", false, nil
	}
	return e.state, true, nil
}

func (m *MemoryTracker) evictLocked(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for id, e := range m.entries {
		if now.Sub(e.updatedAt) > m.ttl {
			delete(m.entries, id)
		}
	}
}

package mint

import (
	"context"
	"sync"
)

// MemoryTimeline keeps transitions in process memory
type MemoryTimeline struct {
	mu      sync.RWMutex
	entries map[string][]Transition
}

// NewMemoryTimeline creates an empty timeline
func NewMemoryTimeline() *MemoryTimeline {
	return &MemoryTimeline{entries: make(map[string][]Transition)}
}

// Append records a transition
func (m *MemoryTimeline) Append(_ context.Context, transition Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[transition.SessionID] = append(m.entries[transition.SessionID], transition)
	return nil
}

// List returns the transitions of a session in order
func (m *MemoryTimeline) List(_ context.Context, sessionID string) ([]Transition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Transition(nil), m.entries[sessionID]...), nil
}

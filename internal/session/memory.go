package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/querysculptor/querysculptor/internal/querystate"
)

// ErrNotFound is returned when a session id has no stored state.
var ErrNotFound = errors.New("session not found")

// MemoryStore keeps serialized states in a process-local map. Entries
// carry no TTL; they live until deleted or the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string][]byte),
	}
}

// Save stores the marshaled state. Marshaling at save time means Load
// always observes an independent copy.
func (m *MemoryStore) Save(_ context.Context, id string, state *querystate.QueryState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.states[id] = raw
	m.mu.Unlock()
	return nil
}

// Load returns the stored state, or ErrNotFound.
func (m *MemoryStore) Load(_ context.Context, id string) (*querystate.QueryState, error) {
	m.mu.RLock()
	raw, ok := m.states[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var state querystate.QueryState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	state.Normalize()
	return &state, nil
}

// Delete removes the session. Deleting an absent id is not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.states, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}

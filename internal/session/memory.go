package session

import (
	"context"
	"slices"
	"sync"

	"lumio_social/internal/model"
)

// MemoryStore is an in-process session registry, used when no external
// backend is configured and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[model.ActorID]model.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[model.ActorID]model.Session)}
}

// Put registers s under its account, replacing any previous session.
func (m *MemoryStore) Put(s model.Session) {
	s.AllowedActions = slices.Clone(s.AllowedActions)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Account] = s
}

func (m *MemoryStore) SessionFor(_ context.Context, account model.ActorID) (model.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[account]
	if !ok {
		return model.Session{}, false, nil
	}
	s.AllowedActions = slices.Clone(s.AllowedActions)
	return s, true, nil
}

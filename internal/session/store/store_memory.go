// Package store provides session.Store implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"tickethub/internal/session"
	id "tickethub/pkg/domain"
	"tickethub/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in process memory. Used when Redis is not
// configured and in tests. Values are copied on the way in and out so a
// caller can never alias stored state.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[id.SessionID]*session.Data
}

var _ session.Store = (*InMemoryStore)(nil)

// NewMemory constructs an empty in-memory session store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[id.SessionID]*session.Data)}
}

func (s *InMemoryStore) Create(_ context.Context, data *session.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[data.ID] = data.Clone()
	return nil
}

func (s *InMemoryStore) Load(_ context.Context, sessionID id.SessionID) (*session.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	return data.Clone(), nil
}

// Update runs fn under the store lock against a copy and commits the copy
// only when fn succeeds.
func (s *InMemoryStore) Update(_ context.Context, sessionID id.SessionID, fn func(*session.Data) error) (*session.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := &session.Data{ID: sessionID}
	if existing, ok := s.sessions[sessionID]; ok {
		working = existing.Clone()
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = sessionID
	s.sessions[sessionID] = working
	return working.Clone(), nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	delete(s.sessions, sessionID)
	return nil
}

// Len returns the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

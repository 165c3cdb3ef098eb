package memory

import (
	"context"
	"sync"

	audit "tickethub/pkg/platform/audit"
)

const defaultCapacity = 1000

// InMemoryStore keeps the most recent events in a bounded ring.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []audit.Event
	next     int
	full     bool
	capacity int
}

func NewInMemoryStore() *InMemoryStore {
	return NewInMemoryStoreWithCapacity(defaultCapacity)
}

func NewInMemoryStoreWithCapacity(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &InMemoryStore{
		events:   make([]audit.Event, capacity),
		capacity: capacity,
	}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[s.next] = event
	s.next = (s.next + 1) % s.capacity
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// ListRecent returns up to limit events, newest first. limit <= 0 returns all.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = s.capacity
	}
	if limit <= 0 || limit > size {
		limit = size
	}
	out := make([]audit.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + s.capacity) % s.capacity
		out = append(out, s.events[idx])
	}
	return out, nil
}

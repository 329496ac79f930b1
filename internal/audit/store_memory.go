package audit

import (
	"context"
	"slices"
	"sync"
)

// DefaultMaxEventsPerUser bounds InMemoryStore so a long-running memory
// deployment does not grow without limit.
const DefaultMaxEventsPerUser = 1000

// InMemoryStore keeps the most recent events per user, oldest first.
type InMemoryStore struct {
	mu         sync.RWMutex
	events     map[string][]Event
	maxPerUser int
}

type InMemoryOption func(*InMemoryStore)

// WithMaxEventsPerUser caps retained events per user; n <= 0 keeps the default.
func WithMaxEventsPerUser(n int) InMemoryOption {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.maxPerUser = n
		}
	}
}

func NewInMemoryStore(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		events:     make(map[string][]Event),
		maxPerUser: DefaultMaxEventsPerUser,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := append(s.events[event.UserID], event)
	if over := len(events) - s.maxPerUser; over > 0 {
		events = slices.Delete(events, 0, over)
	}
	s.events[event.UserID] = events
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events[userID]), nil
}

// Clear drops every stored event.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.events)
}

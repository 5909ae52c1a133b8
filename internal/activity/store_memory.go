package activity

import (
	"context"
	"sync"

	id "pantry/pkg/domain"
)

// InMemoryStore keeps activity events in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) FindByList(_ context.Context, listID id.ListID, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found []Event
	// Newest first: walk the append-ordered slice backwards.
	for i := len(s.events) - 1; i >= 0 && (limit <= 0 || len(found) < limit); i-- {
		if s.events[i].ListID == listID {
			found = append(found, s.events[i])
		}
	}
	return found, nil
}

func (s *InMemoryStore) DeleteByList(_ context.Context, listID id.ListID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	for _, event := range s.events {
		if event.ListID != listID {
			kept = append(kept, event)
		}
	}
	s.events = kept
	return nil
}

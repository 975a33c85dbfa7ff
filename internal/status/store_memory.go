package status

import (
	"context"
	"sync"

	id "beacon/pkg/domain"
	"beacon/pkg/platform/sentinel"
)

// InMemoryStore is the test and dev-mode implementation of Store.
type InMemoryStore struct {
	mu       sync.RWMutex
	statuses map[id.UserID]*SafetyStatus
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{statuses: make(map[id.UserID]*SafetyStatus)}
}

func (s *InMemoryStore) Upsert(_ context.Context, status *SafetyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *status
	s.statuses[status.KidID] = &clone
	return nil
}

func (s *InMemoryStore) FindByKid(_ context.Context, kidID id.UserID) (*SafetyStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[kidID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *status
	return &clone, nil
}

func (s *InMemoryStore) ListByKids(_ context.Context, kidIDs []id.UserID) ([]*SafetyStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*SafetyStatus
	for _, kidID := range kidIDs {
		if status, ok := s.statuses[kidID]; ok {
			clone := *status
			out = append(out, &clone)
		}
	}
	return out, nil
}

package alerts

import (
	"context"
	"sort"
	"sync"

	id "beacon/pkg/domain"
	"beacon/pkg/platform/sentinel"
)

// InMemoryStore is the test and dev-mode implementation of Store.
type InMemoryStore struct {
	mu     sync.RWMutex
	alerts []*Alert
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, alert *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *alert
	s.alerts = append(s.alerts, &clone)
	return nil
}

func (s *InMemoryStore) ListByKids(_ context.Context, kidIDs []id.UserID) ([]*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[id.UserID]struct{}, len(kidIDs))
	for _, kidID := range kidIDs {
		wanted[kidID] = struct{}{}
	}

	var out []*Alert
	for _, alert := range s.alerts {
		if _, ok := wanted[alert.KidID]; ok {
			clone := *alert
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) LatestByKid(_ context.Context, kidID id.UserID) (*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Alert
	for _, alert := range s.alerts {
		if alert.KidID != kidID {
			continue
		}
		if latest == nil || alert.CreatedAt.After(latest.CreatedAt) {
			latest = alert
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

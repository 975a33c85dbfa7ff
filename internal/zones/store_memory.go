package zones

import (
	"context"
	"sort"
	"sync"

	id "beacon/pkg/domain"
	"beacon/pkg/platform/sentinel"
)

// InMemoryStore is the test and dev-mode implementation of Store.
type InMemoryStore struct {
	mu    sync.RWMutex
	zones map[id.ZoneID]*SafeZone
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{zones: make(map[id.ZoneID]*SafeZone)}
}

func (s *InMemoryStore) Create(_ context.Context, zone *SafeZone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *zone
	s.zones[zone.ID] = &clone
	return nil
}

func (s *InMemoryStore) ListByParent(_ context.Context, parentID id.UserID) ([]*SafeZone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*SafeZone
	for _, zone := range s.zones {
		if zone.ParentID == parentID {
			clone := *zone
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, zoneID id.ZoneID, parentID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	zone, ok := s.zones[zoneID]
	if !ok || zone.ParentID != parentID {
		return sentinel.ErrNotFound
	}
	delete(s.zones, zoneID)
	return nil
}

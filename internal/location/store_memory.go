package location

import (
	"context"
	"sync"

	id "beacon/pkg/domain"
	"beacon/pkg/platform/sentinel"
)

// InMemoryStore is the test and dev-mode implementation of Store.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports []*LocationReport
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, report *LocationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *report
	s.reports = append(s.reports, &clone)
	return nil
}

func (s *InMemoryStore) LatestByKid(_ context.Context, kidID id.UserID) (*LocationReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *LocationReport
	for _, report := range s.reports {
		if report.KidID != kidID {
			continue
		}
		if latest == nil || !report.CreatedAt.Before(latest.CreatedAt) {
			latest = report
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

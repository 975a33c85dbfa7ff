package users

import (
	"context"
	"strings"
	"sync"
	"time"

	id "beacon/pkg/domain"
	"beacon/pkg/platform/sentinel"
)

// InMemoryStore is the test and dev-mode implementation of Store.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[id.UserID]*User)}
}

func (s *InMemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.PhoneNumber != "" {
		for _, existing := range s.users {
			if existing.PhoneNumber != "" && strings.EqualFold(existing.PhoneNumber, user.PhoneNumber) {
				return sentinel.ErrConflict
			}
		}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *InMemoryStore) FindByPhone(_ context.Context, phone string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.PhoneNumber != "" && strings.EqualFold(user.PhoneNumber, phone) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindBySetupToken(_ context.Context, token string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Role == RoleKid && user.SetupToken != nil && *user.SetupToken == token {
			clone := *user
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListKids(_ context.Context, parentID id.UserID) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var kids []*User
	for _, user := range s.users {
		if user.Role == RoleKid && user.ParentID != nil && *user.ParentID == parentID {
			clone := *user
			kids = append(kids, &clone)
		}
	}
	return kids, nil
}

func (s *InMemoryStore) ClearSetupToken(_ context.Context, kidID id.UserID, devicePlatform string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[kidID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if user.SetupToken == nil {
		return sentinel.ErrAlreadyUsed
	}
	user.SetupToken = nil
	user.DevicePlatform = devicePlatform
	user.UpdatedAt = now
	return nil
}

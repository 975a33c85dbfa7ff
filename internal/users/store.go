package users

import (
	"context"
	"time"

	id "beacon/pkg/domain"
)

// Store is the persistence contract for users. Implementations return
// sentinel errors (pkg/platform/sentinel); the service layer translates them
// into coded domain errors.
type Store interface {
	// Create persists a new user. Returns sentinel.ErrConflict when the phone
	// number is already taken.
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, userID id.UserID) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	// FindBySetupToken resolves an unclaimed kid by its pairing token.
	FindBySetupToken(ctx context.Context, token string) (*User, error)
	// ListKids returns all kids that reference the given parent.
	ListKids(ctx context.Context, parentID id.UserID) ([]*User, error)
	// ClearSetupToken consumes a kid's pairing token and records the claiming
	// device platform. Returns sentinel.ErrAlreadyUsed when the token is
	// already gone.
	ClearSetupToken(ctx context.Context, kidID id.UserID, devicePlatform string, now time.Time) error
}

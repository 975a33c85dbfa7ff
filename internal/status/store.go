package status

import (
	"context"

	id "beacon/pkg/domain"
)

// Store is the persistence contract for safety statuses.
type Store interface {
	// Upsert inserts or refreshes the single status row for the kid.
	Upsert(ctx context.Context, status *SafetyStatus) error

	// FindByKid returns the kid's status, or sentinel.ErrNotFound when the
	// kid never marked safe.
	FindByKid(ctx context.Context, kidID id.UserID) (*SafetyStatus, error)

	// ListByKids returns statuses for the given kids. Kids that never marked
	// safe are simply absent from the result.
	ListByKids(ctx context.Context, kidIDs []id.UserID) ([]*SafetyStatus, error)
}

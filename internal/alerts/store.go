package alerts

import (
	"context"

	id "beacon/pkg/domain"
)

// Store is the persistence contract for alerts.
type Store interface {
	// Create appends a new alert.
	Create(ctx context.Context, alert *Alert) error

	// ListByKids returns alerts for the given kids, newest first.
	ListByKids(ctx context.Context, kidIDs []id.UserID) ([]*Alert, error)

	// LatestByKid returns the most recent alert for one kid, or
	// sentinel.ErrNotFound when the kid has none.
	LatestByKid(ctx context.Context, kidID id.UserID) (*Alert, error)
}

package zones

import (
	"context"

	id "beacon/pkg/domain"
)

// Store is the persistence contract for safe zones.
//
// Implementations return sentinel errors from pkg/platform/sentinel; the
// service layer translates them into coded domain errors.
type Store interface {
	// Create persists a new zone.
	Create(ctx context.Context, zone *SafeZone) error

	// ListByParent returns all zones owned by the guardian, oldest first.
	ListByParent(ctx context.Context, parentID id.UserID) ([]*SafeZone, error)

	// Delete removes a zone only if the guardian owns it. Returns
	// sentinel.ErrNotFound when no such zone exists for that owner; a zone
	// owned by someone else is retained.
	Delete(ctx context.Context, zoneID id.ZoneID, parentID id.UserID) error
}

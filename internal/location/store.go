package location

import (
	"context"

	id "beacon/pkg/domain"
)

// Store is the persistence contract for location reports.
type Store interface {
	// Create appends a new report.
	Create(ctx context.Context, report *LocationReport) error

	// LatestByKid returns the kid's most recent report, or
	// sentinel.ErrNotFound when the kid has never reported.
	LatestByKid(ctx context.Context, kidID id.UserID) (*LocationReport, error)
}

package location

import (
	"time"

	id "beacon/pkg/domain"
	"beacon/pkg/geo"
)

// LocationReport is one GPS fix from a kid's device. Append-only.
type LocationReport struct {
	ID        id.LocationID
	KidID     id.UserID
	Point     geo.Point
	CreatedAt time.Time
}

// Response is the wire shape for a location report.
type Response struct {
	ID        string    `json:"id"`
	KidID     string    `json:"kid_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

func ToResponse(r *LocationReport) Response {
	return Response{
		ID:        r.ID.String(),
		KidID:     r.KidID.String(),
		Latitude:  r.Point.Latitude,
		Longitude: r.Point.Longitude,
		CreatedAt: r.CreatedAt,
	}
}

// ReportRequest is a kid device posting its current position.
type ReportRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// KidLatest is one row of the guardian dashboard: a kid joined with their
// most recent report. Kids that never reported are skipped.
type KidLatest struct {
	KidID     string    `json:"kid_id"`
	KidName   string    `json:"kid_name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

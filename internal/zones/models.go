package zones

import (
	"time"

	id "beacon/pkg/domain"
	"beacon/pkg/geo"
)

// Radius bounds in meters, matching what a phone GPS fix can meaningfully
// resolve on the low end and a neighbourhood on the high end.
const (
	MinRadiusMeters = 10
	MaxRadiusMeters = 10000
)

// SafeZone is a circular geofence owned by one guardian. Zones are immutable
// after creation; adjusting one means delete and recreate.
type SafeZone struct {
	ID           id.ZoneID
	ParentID     id.UserID
	Name         string
	Center       geo.Point
	RadiusMeters float64
	CreatedAt    time.Time
}

// Contains reports whether the point falls within the zone, boundary
// inclusive: a kid standing exactly on the fence is still inside.
func (z *SafeZone) Contains(p geo.Point) bool {
	return geo.Distance(z.Center, p) <= z.RadiusMeters
}

// Response is the wire shape for a zone.
type Response struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radius_meters"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToResponse(z *SafeZone) Response {
	return Response{
		ID:           z.ID.String(),
		Name:         z.Name,
		Latitude:     z.Center.Latitude,
		Longitude:    z.Center.Longitude,
		RadiusMeters: z.RadiusMeters,
		CreatedAt:    z.CreatedAt,
	}
}

// CreateRequest creates a zone for the authenticated guardian.
type CreateRequest struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}

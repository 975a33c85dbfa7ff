package status

import (
	"time"

	id "beacon/pkg/domain"
)

// SafetyStatus is a kid's self-reported "I'm safe" flag. One row per kid;
// marking safe again just refreshes the timestamp.
type SafetyStatus struct {
	KidID     id.UserID
	IsSafe    bool
	UpdatedAt time.Time
}

// Response is the wire shape for a safety status, joined with the kid's name
// for the guardian dashboard.
type Response struct {
	KidID     string    `json:"kid_id"`
	KidName   string    `json:"kid_name,omitempty"`
	IsSafe    bool      `json:"is_safe"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToResponse(s *SafetyStatus) Response {
	return Response{
		KidID:     s.KidID.String(),
		IsSafe:    s.IsSafe,
		UpdatedAt: s.UpdatedAt,
	}
}

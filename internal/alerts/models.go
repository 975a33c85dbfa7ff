package alerts

import (
	"time"

	id "beacon/pkg/domain"
)

// Alert records one out-of-zone event for a kid. Append-only; alerts are
// never edited or deleted.
type Alert struct {
	ID        id.AlertID
	KidID     id.UserID
	Message   string
	CreatedAt time.Time
}

// Response is the wire shape for an alert, joined with the kid's name for
// the guardian dashboard.
type Response struct {
	ID        string    `json:"id"`
	KidID     string    `json:"kid_id"`
	KidName   string    `json:"kid_name,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func ToResponse(a *Alert) Response {
	return Response{
		ID:        a.ID.String(),
		KidID:     a.KidID.String(),
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
}

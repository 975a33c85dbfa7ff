package users

import (
	"time"

	id "beacon/pkg/domain"
)

// Role discriminates the single users table into guardians and tracked kids.
type Role string

const (
	RoleParent Role = "parent"
	RoleKid    Role = "kid"
)

// User is a guardian or a kid. Parents carry credentials; kids carry a
// guardian reference and, until their device pairs, a one-time setup token.
type User struct {
	ID           id.UserID
	FullName     string
	Role         Role
	PhoneNumber  string // parents only, unique
	PasswordHash string // parents only, never serialized
	ParentID     *id.UserID
	// SetupToken is minted when a parent registers a kid and cleared when a
	// device claims it. Single use.
	SetupToken     *string
	DevicePlatform string // recorded at claim time, informational
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Response is the wire shape for a user. Credentials and setup tokens never
// leave the service except through the explicit registration flow.
type Response struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	Role        Role      `json:"role"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	ParentID    string    `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToResponse strips credentials and tokens from a user row.
func ToResponse(u *User) Response {
	resp := Response{
		ID:          u.ID.String(),
		FullName:    u.FullName,
		Role:        u.Role,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.ParentID != nil {
		resp.ParentID = u.ParentID.String()
	}
	return resp
}

// KidCreatedResponse is returned only to the registering parent: it includes
// the one-time setup token the kid's device needs for pairing.
type KidCreatedResponse struct {
	Response
	SetupToken string `json:"setup_token"`
}

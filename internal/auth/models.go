package auth

import "beacon/internal/users"

// TokenResponse is the wire shape returned by every login and registration
// flow that mints an access token.
type TokenResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        users.Response `json:"user"`
}

// RegisterRequest creates a guardian account.
type RegisterRequest struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// LoginRequest authenticates a guardian by phone and password.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// KidLoginRequest exchanges a one-time setup token for a kid access token.
type KidLoginRequest struct {
	SetupToken string `json:"setup_token"`
}

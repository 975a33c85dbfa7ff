package jwttoken

import (
	"beacon/internal/platform/middleware"
	id "beacon/pkg/domain"
	dErrors "beacon/pkg/domain-errors"
)

// JWTServiceAdapter bridges JWTService to the middleware.JWTValidator
// interface, converting string claims into typed IDs at the trust boundary.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &middleware.JWTClaims{
		UserID: userID,
		Role:   claims.Role,
	}, nil
}

package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "beacon/pkg/domain"
	dErrors "beacon/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-signing-key", "beacon")
	userID := id.NewUserID()

	token, err := svc.GenerateAccessToken(userID, "parent", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "parent", claims.Role)
	assert.Equal(t, "beacon", claims.Issuer)
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", "beacon")

	token, err := svc.GenerateAccessToken(id.NewUserID(), "kid", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidate_WrongKey(t *testing.T) {
	svc := NewJWTService("key-one", "beacon")
	other := NewJWTService("key-two", "beacon")

	token, err := svc.GenerateAccessToken(id.NewUserID(), "parent", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestAdapter_TypedClaims(t *testing.T) {
	svc := NewJWTService("test-signing-key", "beacon")
	adapter := NewJWTServiceAdapter(svc)
	userID := id.NewUserID()

	token, err := svc.GenerateAccessToken(userID, "kid", time.Hour)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "kid", claims.Role)
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kursio/kursio-backend/internal/config"
)

func testAuthService() *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4, // Minimum cost, keeps the test fast
	})
}

func TestPasswordHashRoundtrip(t *testing.T) {
	auth := testAuthService()

	hash, err := auth.HashPassword("s3cret-password")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-password", hash)

	assert.NoError(t, auth.CheckPassword(hash, "s3cret-password"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong-password"), ErrInvalidCredentials)
}

func TestTokenRoundtrip(t *testing.T) {
	auth := testAuthService()

	token, err := auth.GenerateToken(42, true)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.True(t, claims.IsSuperadmin)
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	auth := testAuthService()

	token, err := auth.GenerateToken(1, false)
	require.NoError(t, err)

	other := NewAuthService(&config.Config{JWTSecret: "different-secret", JWTExpiry: time.Hour})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	auth := testAuthService()

	_, err := auth.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

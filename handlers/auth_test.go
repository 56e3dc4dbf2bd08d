package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelhaven/gamehub-backend/models"
	"github.com/pixelhaven/gamehub-backend/pkg/config"
)

func signToken(t *testing.T, secret string) string {
	t.Helper()
	claims := models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		ID:       "7",
		Username: "alice",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateTokenUsesConfiguredSecret(t *testing.T) {
	Setup(nil, &config.Config{JWTSecret: "test-secret"})

	claims, err := ValidateToken(signToken(t, "test-secret"))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "7", claims.ID)

	_, err = ValidateToken(signToken(t, "some-other-secret"))
	assert.Error(t, err)
}

func TestValidateTokenWithoutSecret(t *testing.T) {
	Setup(nil, &config.Config{})

	_, err := ValidateToken(signToken(t, "test-secret"))
	assert.Error(t, err)
}

package auth

import (
	"context"
	"testing"
	"time"

	"fruitbox-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("mango-season"), bcrypt.MinCost)
	require.NoError(t, err)

	return NewAuthenticator(config.AdminConfig{
		Email:        "Admin@FruitBox.in ",
		PasswordHash: string(hash),
		JWTSecret:    testJWTSecret,
		TokenTTL:     time.Hour,
	})
}

func TestAuthenticator_Login(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthenticator(t)

	t.Run("Success", func(t *testing.T) {
		token, err := a.Login(ctx, "admin@fruitbox.in", "mango-season")
		require.NoError(t, err)

		claims, err := ParseToken(testJWTSecret, token)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, claims.Role)
		assert.Equal(t, "admin@fruitbox.in", claims.Email)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := a.Login(ctx, "admin@fruitbox.in", "guava")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Wrong email", func(t *testing.T) {
		_, err := a.Login(ctx, "someone@fruitbox.in", "mango-season")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Not configured", func(t *testing.T) {
		empty := NewAuthenticator(config.AdminConfig{})
		assert.False(t, empty.Configured())

		_, err := empty.Login(ctx, "admin@fruitbox.in", "mango-season")
		assert.ErrorIs(t, err, ErrAdminNotConfigured)
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("mango-season")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("mango-season")))
}

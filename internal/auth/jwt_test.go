package auth_test

import (
	"testing"
	"time"

	"go-gin-meetup/config"
	"go-gin-meetup/internal/auth"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifier(t *testing.T) *auth.Verifier {
	t.Helper()
	v, err := auth.NewVerifier(&config.AuthConfig{JWTSecret: "test-secret", Issuer: "meetup-test"})
	require.NoError(t, err)
	return v
}

func TestVerifier_RoundTrip(t *testing.T) {
	v := newVerifier(t)
	userID := uuid.New()

	token, err := v.Sign(userID, "ada@test.com", time.Hour)
	require.NoError(t, err)

	session, err := v.ParseBearer("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, "ada@test.com", session.Email)
	assert.True(t, session.IsAuthenticated())
}

func TestVerifier_Rejects(t *testing.T) {
	v := newVerifier(t)
	userID := uuid.New()

	t.Run("Expired", func(t *testing.T) {
		token, err := v.Sign(userID, "a@test.com", -time.Minute)
		require.NoError(t, err)

		_, err = v.Parse(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		other, err := auth.NewVerifier(&config.AuthConfig{JWTSecret: "other", Issuer: "meetup-test"})
		require.NoError(t, err)
		token, err := other.Sign(userID, "a@test.com", time.Hour)
		require.NoError(t, err)

		_, err = v.Parse(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Wrong Issuer", func(t *testing.T) {
		other, err := auth.NewVerifier(&config.AuthConfig{JWTSecret: "test-secret", Issuer: "someone-else"})
		require.NoError(t, err)
		token, err := other.Sign(userID, "a@test.com", time.Hour)
		require.NoError(t, err)

		_, err = v.Parse(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Non UUID Subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "42",
			Issuer:    "meetup-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = v.Parse(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Missing Scheme", func(t *testing.T) {
		_, err := v.ParseBearer("token-without-scheme")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Empty Header", func(t *testing.T) {
		_, err := v.ParseBearer("")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestNewVerifier_EmptySecret(t *testing.T) {
	_, err := auth.NewVerifier(&config.AuthConfig{})
	assert.Error(t, err)
}

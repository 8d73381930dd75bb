package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhandosm/baraholka/internal/pkg/env"
)

func init() {
	env.Env = map[string]string{"JWT_SECRET": "test-secret-do-not-use"}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken(42, "dealer", "fully_verified", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)
	require.NotEmpty(t, at.JTI)

	claims, err := ParseAccessToken(at.Token)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "dealer", claims.UserType)
	assert.Equal(t, "fully_verified", claims.Verified)
	assert.Equal(t, at.JTI, claims.JTI)
}

func TestParseRejectsTampered(t *testing.T) {
	at, err := NewAccessToken(1, "regular", "pending", time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(at.Token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	at, err := NewAccessToken(1, "regular", "pending", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(at.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(time.Hour)
	require.NoError(t, err)

	assert.Len(t, rt.Raw, 96)
	assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))
	assert.NotEqual(t, rt.Raw, HashRefreshRaw(rt.Raw))

	other, err := NewRefreshToken(time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(other.Raw))
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, expiresAt, err := svc.GenerateAccessToken(
		"u-1", "user@example.com",
		[]string{"operator"}, []string{"recyclebin:write"},
		false,
	)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, []string{"operator"}, user.Roles)
	assert.Equal(t, []string{"recyclebin:write"}, user.Permissions)
	assert.False(t, user.IsAdmin)
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret-a"))
	verifier := NewJWTService(DefaultJWTConfig("secret-b"))

	token, _, err := issuer.GenerateAccessToken("u-1", "", nil, nil, false)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_Expired(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken("u-1", "", nil, nil, false)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_GarbageToken(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("s3cret"))

	token, expiresAt, err := svc.IssueToken("u-1", "office@example.cz", []string{"accountant"})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	caller, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", caller.UserID)
	assert.Equal(t, "office@example.cz", caller.Email)
	assert.Equal(t, []string{"accountant"}, caller.Roles)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("s3cret"))

	other := NewJWTService(DefaultJWTConfig("other"))
	token, _, err := other.IssueToken("u-1", "", nil)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err, "wrong secret")

	cfg := DefaultJWTConfig("s3cret")
	cfg.Issuer = "someone-else"
	token, _, err = NewJWTService(cfg).IssueToken("u-1", "", nil)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err, "wrong issuer")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": "u-1", "iss": "salesdocs"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err, "alg none")
}

func TestJWTService_Expired(t *testing.T) {
	cfg := DefaultJWTConfig("s3cret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.IssueToken("u-1", "", nil)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_Enabled(t *testing.T) {
	assert.False(t, NewJWTService(DefaultJWTConfig("")).Enabled())
	assert.True(t, NewJWTService(DefaultJWTConfig("x")).Enabled())
}

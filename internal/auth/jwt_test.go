package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestValidateExtractsSubject(t *testing.T) {
	v := NewValidator("secret")
	token := sign(t, "secret", jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(time.Hour).Unix()})

	sub, err := v.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "alice", sub)
}

func TestValidateFallsBackToUserIDClaim(t *testing.T) {
	v := NewValidator("secret")
	token := sign(t, "secret", jwt.MapClaims{"user_id": "bob", "exp": time.Now().Add(time.Hour).Unix()})

	sub, err := v.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "bob", sub)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	v := NewValidator("secret")
	token := sign(t, "other", jwt.MapClaims{"sub": "alice"})

	_, err := v.Validate(token)
	require.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	v := NewValidator("secret")
	token := sign(t, "secret", jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(-time.Hour).Unix()})

	_, err := v.Validate(token)
	require.Error(t, err)
}

func TestValidateRejectsMissingSubject(t *testing.T) {
	v := NewValidator("secret")
	token := sign(t, "secret", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	_, err := v.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

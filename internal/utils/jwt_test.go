package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSigner_SignAndParse(t *testing.T) {
	signer := NewTokenSigner("secret", 0)

	tokenString, err := signer.Sign(7, "abc123", time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := signer.Parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "abc123", claims.Key())
	assert.Nil(t, claims.ExpiresAt)
}

func TestTokenSigner_Expiry(t *testing.T) {
	signer := NewTokenSigner("secret", 1)

	tokenString, err := signer.Sign(1, "k", time.Now())
	require.NoError(t, err)

	claims, err := signer.Parse(tokenString)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenSigner_ExpiredToken(t *testing.T) {
	signer := NewTokenSigner("secret", 1)

	tokenString, err := signer.Sign(1, "k", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = signer.Parse(tokenString)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenSigner_Expired(t *testing.T) {
	now := time.Now()

	assert.False(t, NewTokenSigner("secret", 0).Expired(now.Add(-1000*time.Hour), now))

	signer := NewTokenSigner("secret", 1)
	assert.False(t, signer.Expired(now.Add(-30*time.Minute), now))
	assert.True(t, signer.Expired(now.Add(-time.Hour), now))
	assert.True(t, signer.Expired(now.Add(-48*time.Hour), now))
}

func TestTokenSigner_InvalidToken(t *testing.T) {
	signer := NewTokenSigner("secret", 0)

	_, err := signer.Parse("invalid.token.string")
	assert.Error(t, err)
}

func TestTokenSigner_WrongSecret(t *testing.T) {
	tokenString, _ := NewTokenSigner("secret1", 0).Sign(1, "k", time.Now())

	_, err := NewTokenSigner("secret2", 0).Parse(tokenString)
	assert.Error(t, err)
}

func TestTokenSigner_InvalidSigningMethod(t *testing.T) {
	signer := NewTokenSigner("secret", 0)
	claims := &TokenClaims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ID: "k"},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	tokenString, _ := token.SignedString([]byte("secret"))

	_, err := signer.Parse(tokenString)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected signing method")
}

func TestTokenSigner_MissingKey(t *testing.T) {
	signer := NewTokenSigner("secret", 0)
	tokenString, _ := signer.Sign(1, "", time.Now())

	_, err := signer.Parse(tokenString)
	assert.Error(t, err)
}

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey()
	require.NoError(t, err)
	b, err := GenerateKey()
	require.NoError(t, err)

	assert.Len(t, a, KeyLength)
	assert.Regexp(t, `^[0-9a-f]+$`, a)
	assert.NotEqual(t, a, b)
}

package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims binds a stored token key (jti) to its user
type TokenClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Key returns the stored token key carried by the claims
func (c *TokenClaims) Key() string {
	return c.ID
}

// TokenSigner wraps stored token keys into signed bearer strings.
// The signature only proves the string was issued here; a bearer is
// live only while its key is still stored.
type TokenSigner struct {
	secretKey       string
	expirationHours int64
}

// NewTokenSigner creates a new TokenSigner. expirationHours <= 0 issues
// bearers without an exp claim.
func NewTokenSigner(secretKey string, expirationHours int64) *TokenSigner {
	return &TokenSigner{secretKey: secretKey, expirationHours: expirationHours}
}

// Sign produces the bearer string for a stored key
func (ts *TokenSigner) Sign(userID int64, key string, issuedAt time.Time) (string, error) {
	claims := &TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       key,
			IssuedAt: jwt.NewNumericDate(issuedAt),
			Subject:  strconv.FormatInt(userID, 10),
		},
	}
	if ts.expirationHours > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(ts.expiry(issuedAt))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(ts.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Expired reports whether a bearer signed at issuedAt is no longer valid at now
func (ts *TokenSigner) Expired(issuedAt, now time.Time) bool {
	return ts.expirationHours > 0 && !ts.expiry(issuedAt).After(now)
}

func (ts *TokenSigner) expiry(issuedAt time.Time) time.Time {
	return issuedAt.Add(time.Hour * time.Duration(ts.expirationHours))
}

// Parse verifies a bearer string and returns its claims
func (ts *TokenSigner) Parse(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ts.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Key() == "" || claims.UserID == 0 {
		return nil, fmt.Errorf("invalid token: missing key or user")
	}
	return claims, nil
}

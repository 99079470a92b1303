// Package consultation issues access tokens for the live session provider and
// closes finished sessions.
package consultation

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenMinter signs provider-compatible access tokens. The provider expects an
// HS256 JWT whose user_id claim matches the connecting user.
type TokenMinter struct {
	apiKey string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenMinter creates a minter. ttl of zero issues non-expiring tokens,
// which is what the provider SDK defaults to.
func NewTokenMinter(apiKey, secret string, ttl time.Duration) *TokenMinter {
	return &TokenMinter{
		apiKey: apiKey,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// APIKey returns the provider API key the client pairs with the token.
func (m *TokenMinter) APIKey() string { return m.apiKey }

// Mint signs a token for userID.
func (m *TokenMinter) Mint(userID string) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("consultation: token secret not configured")
	}
	if userID == "" {
		return "", fmt.Errorf("consultation: user id required")
	}

	claims := jwt.MapClaims{"user_id": userID}
	if m.ttl > 0 {
		now := m.now()
		claims["iat"] = now.Unix()
		claims["exp"] = now.Add(m.ttl).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("consultation: sign token: %w", err)
	}
	return signed, nil
}

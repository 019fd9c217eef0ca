package testutil

import (
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"
)

// TokenSigningKey is the HS256 key used for test tokens. Clients never check
// signatures, so any key works.
var TokenSigningKey = []byte("storefront-test-signing-key-0123")

// TokenClaims are the claims written into a test token.
type TokenClaims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

// NewToken signs claims into a compact JWT.
func NewToken(t testing.TB, claims any) string {
	t.Helper()

	sig, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: TokenSigningKey},
		(&jose.SignerOptions{}).WithType("JWT"))
	require.NoError(t, err)

	raw, err := jwt.Signed(sig).Claims(claims).CompactSerialize()
	require.NoError(t, err)
	return raw
}

// NewTokenExpiringAt returns a token for username that expires at exp.
func NewTokenExpiringAt(t testing.TB, username string, exp time.Time) string {
	t.Helper()
	return NewToken(t, TokenClaims{
		UserID:    1,
		Username:  username,
		Email:     username + "@example.com",
		ExpiresAt: exp.Unix(),
		IssuedAt:  exp.Add(-time.Hour).Unix(),
	})
}

// NewTokenExpiringIn returns a token for username that expires d from now.
func NewTokenExpiringIn(t testing.TB, username string, d time.Duration) string {
	t.Helper()
	return NewTokenExpiringAt(t, username, time.Now().Add(d))
}

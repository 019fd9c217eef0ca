// Package authtoken decodes the claims carried in a storefront bearer token.
//
// The signature of the token is NOT verified. Claims decoded here are
// advisory only: they drive session state on the client (expiry countdown,
// the displayed username) and must never be used to make a security decision.
// The API server validates every token it receives and is the only trust
// boundary.
package authtoken

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Claims are the fields of the token payload.
type Claims struct {
	SubjectID int64  `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

// Expiry returns the expiry as a time.
func (c *Claims) Expiry() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

// IssuedTime returns the issued-at claim as a time.
func (c *Claims) IssuedTime() time.Time {
	return time.Unix(c.IssuedAt, 0)
}

// A Codec decodes tokens against a clock.
type Codec struct {
	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time
}

var defaultCodec Codec

// Decode decodes the claims of token using the default codec.
func Decode(token string) (*Claims, bool) {
	return defaultCodec.Decode(token)
}

// IsExpired reports whether token is expired using the default codec.
func IsExpired(token string) bool {
	return defaultCodec.IsExpired(token)
}

// ExpiryTime returns the expiry of token using the default codec.
func ExpiryTime(token string) (time.Time, bool) {
	return defaultCodec.ExpiryTime(token)
}

// RemainingLifetime returns how long token stays valid using the default codec.
func RemainingLifetime(token string) (time.Duration, bool) {
	return defaultCodec.RemainingLifetime(token)
}

// Decode returns the claims in the payload segment of token. Tokens that do
// not have exactly three segments, or whose payload is not base64 encoded
// JSON, yield false.
func (c Codec) Decode(token string) (*Claims, bool) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, false
	}

	payload := strings.NewReplacer("-", "+", "_", "/").Replace(segments[1])
	if n := len(payload) % 4; n != 0 {
		payload += strings.Repeat("=", 4-n)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}

	var wire struct {
		SubjectID *int64  `json:"user_id"`
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		ExpiresAt *int64  `json:"exp"`
		IssuedAt  *int64  `json:"iat"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, false
	}
	// every claim is required
	if wire.SubjectID == nil || wire.Username == nil || wire.Email == nil ||
		wire.ExpiresAt == nil || wire.IssuedAt == nil {
		return nil, false
	}
	return &Claims{
		SubjectID: *wire.SubjectID,
		Username:  *wire.Username,
		Email:     *wire.Email,
		ExpiresAt: *wire.ExpiresAt,
		IssuedAt:  *wire.IssuedAt,
	}, true
}

// IsExpired reports whether token is expired. A token that cannot be decoded
// is always expired.
func (c Codec) IsExpired(token string) bool {
	claims, ok := c.Decode(token)
	if !ok {
		return true
	}
	return c.now().Unix() >= claims.ExpiresAt
}

// ExpiryTime returns the expiry of token.
func (c Codec) ExpiryTime(token string) (time.Time, bool) {
	claims, ok := c.Decode(token)
	if !ok {
		return time.Time{}, false
	}
	return claims.Expiry(), true
}

// RemainingLifetime returns the time left until token expires, never less
// than zero.
func (c Codec) RemainingLifetime(token string) (time.Duration, bool) {
	claims, ok := c.Decode(token)
	if !ok {
		return 0, false
	}
	return max(0, claims.Expiry().Sub(c.now())), true
}

func (c Codec) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

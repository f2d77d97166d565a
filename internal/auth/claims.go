package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can learn from a token without the server key.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp
}

// ParseClaims reads a JWT's registered claims without verifying the
// signature.
func ParseClaims(token string) (*Claims, error) {
	rc := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, rc); err != nil {
		return nil, err
	}
	c := &Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}

// Expired reports whether token is a JWT whose exp is at or before now.
// Opaque tokens are never considered expired.
func Expired(token string, now time.Time) bool {
	c, err := ParseClaims(token)
	if err != nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed = errors.New("bearer token is malformed")
	ErrTokenExpired   = errors.New("bearer token is expired")
)

// TokenInfo is what the client needs from a bearer token: who it names and
// whether it is still worth sending.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// Inspect parses a bearer token without verifying its signature. The
// backend is the verifier; the client only inspects expiry and subject to
// decide between opening a workspace and redirecting to login. Both error
// cases collapse to the login path.
func Inspect(token string) (*TokenInfo, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	info := &TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		if time.Now().After(info.ExpiresAt) {
			return info, ErrTokenExpired
		}
	}
	return info, nil
}

// Usable reports whether a stored token should be sent at all.
func Usable(token string) bool {
	if token == "" {
		return false
	}
	_, err := Inspect(token)
	return err == nil
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func TestInspect_ValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	info, err := Inspect(signedToken(t, "learner-7", exp))
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.Subject != "learner-7" {
		t.Errorf("subject = %q", info.Subject)
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Errorf("expiresAt = %v, want %v", info.ExpiresAt, exp)
	}
}

func TestInspect_ExpiredToken(t *testing.T) {
	info, err := Inspect(signedToken(t, "learner-7", time.Now().Add(-time.Minute)))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
	if info == nil || info.Subject != "learner-7" {
		t.Error("expired token should still report its claims")
	}
}

func TestInspect_MalformedToken(t *testing.T) {
	if _, err := Inspect("not.a.jwt"); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("err = %v, want ErrTokenMalformed", err)
	}
	if _, err := Inspect(""); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("empty token err = %v, want ErrTokenMalformed", err)
	}
}

func TestUsable(t *testing.T) {
	if !Usable(signedToken(t, "s", time.Now().Add(time.Hour))) {
		t.Error("valid token reported unusable")
	}
	if Usable(signedToken(t, "s", time.Now().Add(-time.Hour))) {
		t.Error("expired token reported usable")
	}
	if Usable("") {
		t.Error("empty token reported usable")
	}
}

package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestInspectToken(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	info, ok, err := InspectToken(signed(t, jwt.RegisteredClaims{Subject: "planner", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}), now)
	if !ok || err != nil || info.Subject != "planner" || !info.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("valid token: %+v %v %v", info, ok, err)
	}

	_, ok, err = InspectToken(signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}), now)
	if !ok || !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired token: %v %v", ok, err)
	}

	if _, ok, err = InspectToken("opaque-api-key", now); ok || err != nil {
		t.Fatalf("opaque token: %v %v", ok, err)
	}
}

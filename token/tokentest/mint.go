// Package tokentest mints bearer tokens for tests.
package tokentest

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const secret = "tokentest-secret"

// Mint signs claims with HS256 and fails the test on error.
func Mint(t testing.TB, claims jwtlib.MapClaims) string {
	t.Helper()
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("tokentest.Mint: %v", err)
	}
	return signed
}

// Valid mints a token for userID that expires in an hour.
func Valid(t testing.TB, userID int) string {
	t.Helper()
	return Mint(t, jwtlib.MapClaims{
		"user_id": userID,
		"email":   "trader@example.com",
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
}

// Expired mints a token that expired an hour ago.
func Expired(t testing.TB, userID int) string {
	t.Helper()
	return Mint(t, jwtlib.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
}

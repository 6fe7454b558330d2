// Package token decodes bearer token claims locally, without a network round trip.
//
// Tokens are JWT shaped: three dot separated segments whose middle segment is base64url
// encoded JSON. Signatures are not verified here; the API remains the authority on
// whether a token is accepted. The decode only answers "is it worth presenting?".
package token

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/jrsteele09/signals-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Identity holds the identity claims carried by a token.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

var segmentParser = jwtlib.NewParser(jwtlib.WithPaddingAllowed())

// Validate returns nil when raw is well formed and its exp claim is in the future.
// Failures wrap errors.ErrInvalidToken or errors.ErrTokenExpired.
func Validate(raw string) error {
	claims, err := decodeClaims(raw)
	if err != nil {
		return err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if exp == nil {
		return fmt.Errorf("%w: missing exp claim", apperrors.ErrInvalidToken)
	}
	if exp.Unix() <= NowTimeFunc().Unix() {
		return fmt.Errorf("%w: expired at %s", apperrors.ErrTokenExpired, exp.UTC().Format(time.RFC3339))
	}
	return nil
}

// IsValid reports whether raw is well formed and unexpired.
func IsValid(raw string) bool {
	return Validate(raw) == nil
}

// ExtractIdentity returns the identity claims of raw, or false if it cannot be decoded.
// Expiry is not checked.
func ExtractIdentity(raw string) (*Identity, bool) {
	claims, err := decodeClaims(raw)
	if err != nil {
		return nil, false
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &Identity{
		UserID: claimString(claims["user_id"]),
		Email:  email,
		Role:   role,
	}, true
}

func decodeClaims(raw string) (jwtlib.MapClaims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", apperrors.ErrInvalidToken, len(parts))
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", apperrors.ErrInvalidToken, err)
	}

	var claims jwtlib.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: parse payload: %v", apperrors.ErrInvalidToken, err)
	}
	// A JSON null payload decodes without error into a nil map.
	if claims == nil {
		return nil, fmt.Errorf("%w: payload is not a claims object", apperrors.ErrInvalidToken)
	}
	return claims, nil
}

// user_id is numeric on the wire but treated as an opaque string by the client.
func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

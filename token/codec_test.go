package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/signals-client/internal/errors"
	"github.com/jrsteele09/signals-client/token"
	"github.com/jrsteele09/signals-client/token/tokentest"
	"github.com/stretchr/testify/require"
)

func withNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := token.NowTimeFunc
	token.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowTimeFunc = prev })
}

func rawToken(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func TestValidate(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	withNow(t, now)

	t.Run("future expiry", func(t *testing.T) {
		tok := tokentest.Mint(t, jwtlib.MapClaims{"exp": now.Add(time.Minute).Unix()})
		require.NoError(t, token.Validate(tok))
		require.True(t, token.IsValid(tok))
	})

	t.Run("past expiry", func(t *testing.T) {
		tok := tokentest.Mint(t, jwtlib.MapClaims{"exp": now.Add(-time.Second).Unix()})
		require.ErrorIs(t, token.Validate(tok), apperrors.ErrTokenExpired)
		require.False(t, token.IsValid(tok))
	})

	t.Run("expiry equal to now", func(t *testing.T) {
		tok := tokentest.Mint(t, jwtlib.MapClaims{"exp": now.Unix()})
		require.False(t, token.IsValid(tok))
	})

	t.Run("padded payload", func(t *testing.T) {
		payload := base64.URLEncoding.EncodeToString([]byte(`{"exp":1893456000}`))
		require.True(t, token.IsValid("h."+payload+".s"))
	})

	malformed := map[string]string{
		"empty":             "",
		"one segment":       "abc",
		"two segments":      "a.b",
		"four segments":     "a.b.c.d",
		"bad base64":        "h.%%%.s",
		"payload not json":  rawToken("not json"),
		"payload array":     rawToken(`[1,2]`),
		"payload null":      rawToken(`null`),
		"missing exp":       rawToken(`{"user_id":1}`),
		"string exp":        rawToken(`{"exp":"1893456000"}`),
		"null exp":          rawToken(`{"exp":null}`),
		"whitespace tokens": " . . ",
	}
	for name, tok := range malformed {
		t.Run(name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.False(t, token.IsValid(tok))
			})
			require.ErrorIs(t, token.Validate(tok), apperrors.ErrInvalidToken)
		})
	}
}

func TestExtractIdentity(t *testing.T) {
	t.Run("numeric user id", func(t *testing.T) {
		tok := tokentest.Mint(t, jwtlib.MapClaims{
			"user_id": 42,
			"email":   "a@example.com",
			"role":    "premium",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})
		id, ok := token.ExtractIdentity(tok)
		require.True(t, ok)
		require.Equal(t, &token.Identity{UserID: "42", Email: "a@example.com", Role: "premium"}, id)
	})

	t.Run("string user id", func(t *testing.T) {
		id, ok := token.ExtractIdentity(rawToken(`{"user_id":"u-1"}`))
		require.True(t, ok)
		require.Equal(t, "u-1", id.UserID)
		require.Empty(t, id.Email)
	})

	t.Run("null payload", func(t *testing.T) {
		id, ok := token.ExtractIdentity(rawToken(`null`))
		require.False(t, ok)
		require.Nil(t, id)
	})

	t.Run("malformed", func(t *testing.T) {
		id, ok := token.ExtractIdentity("not-a-token")
		require.False(t, ok)
		require.Nil(t, id)
	})
}

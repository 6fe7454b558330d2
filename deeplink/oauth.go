package deeplink

import (
	"net/url"
	"strings"
)

// OAuthCallback is the payload the server appends to the client redirect after an OAuth login.
type OAuthCallback struct {
	Token     string
	UserID    string
	Nickname  string
	Provider  string
	IsNewUser bool
}

// ParseOAuthCallback reads the callback parameters from raw. It accepts any URL form
// (bamtoly://?token=..., bamtoly://oauth/callback?..., https://.../callback?...) and reports
// false unless every parameter is present and non-empty.
func ParseOAuthCallback(raw string) (*OAuthCallback, bool) {
	_, rest, found := strings.Cut(raw, "?")
	if !found {
		return nil, false
	}
	query, _, _ := strings.Cut(rest, "?")
	query, _, _ = strings.Cut(query, "#")

	values, _ := url.ParseQuery(query)
	cb := &OAuthCallback{
		Token:    values.Get("token"),
		UserID:   values.Get("user_id"),
		Nickname: values.Get("nickname"),
		Provider: values.Get("provider"),
	}
	isNewUser := values.Get("is_new_user")
	if cb.Token == "" || cb.UserID == "" || cb.Nickname == "" || cb.Provider == "" || isNewUser == "" {
		return nil, false
	}
	cb.IsNewUser = isNewUser == "true"
	return cb, true
}

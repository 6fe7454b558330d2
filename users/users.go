package users

import "time"

// AuthProvider is how the user signed up.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
	ProviderKakao  AuthProvider = "kakao"
	ProviderApple  AuthProvider = "apple"
)

// IsOAuth reports whether p is an external OAuth provider.
func (p AuthProvider) IsOAuth() bool {
	switch p {
	case ProviderGoogle, ProviderKakao, ProviderApple:
		return true
	}
	return false
}

// RoleType represents the user's service tier
type RoleType string

const (
	RoleUser    RoleType = "user"
	RolePremium RoleType = "premium"
	RoleAdmin   RoleType = "admin"
)

// User is the profile returned by the current-user endpoint.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	Nickname     string       `json:"nickname"`
	AuthProvider AuthProvider `json:"auth_provider"`
	CreatedAt    time.Time    `json:"created_at"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
	IsActive     bool         `json:"is_active"`
	Role         RoleType     `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

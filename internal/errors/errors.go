package errors

import (
	"errors"
	"fmt"
)

// Common error types for the signals client
var (
	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Session errors
	ErrProfileLoad   = errors.New("profile load failed")
	ErrRefreshFailed = errors.New("token refresh failed")

	// Request layer errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrAPIResponse  = errors.New("api error")

	// Storage errors
	ErrCredentialUnavailable = errors.New("credential storage unavailable")
	ErrStorageClosed         = errors.New("storage closed")

	// Navigation errors
	ErrNotReady          = errors.New("navigation not ready")
	ErrScreenUnavailable = errors.New("screen not available")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

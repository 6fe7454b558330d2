package session

import (
	"fmt"

	apperrors "github.com/jrsteele09/signals-client/internal/errors"
)

// InvalidTokenError is returned by Login when the token fails local validation.
// Nothing was stored and no request was made.
type InvalidTokenError struct {
	Err error
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("login rejected: %v", e.Err)
}

func (e *InvalidTokenError) Unwrap() []error {
	return []error{apperrors.ErrInvalidToken, e.Err}
}

// ProfileLoadError wraps a failed profile fetch during login or restore.
type ProfileLoadError struct {
	Err error
}

func (e *ProfileLoadError) Error() string {
	return fmt.Sprintf("profile load failed: %v", e.Err)
}

func (e *ProfileLoadError) Unwrap() []error {
	return []error{apperrors.ErrProfileLoad, e.Err}
}

// RefreshError wraps any refresh failure. The session has been logged out when it is returned.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() []error {
	return []error{apperrors.ErrRefreshFailed, e.Err}
}

package api

import (
	"fmt"

	apperrors "github.com/jrsteele09/signals-client/internal/errors"
)

// UnauthorizedError is returned for a 401 response. By the time the caller sees it the
// stored credential has been cleared and the unauthorized event published.
type UnauthorizedError struct {
	URL    string
	Status int
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("UNAUTHORIZED: %s", e.URL)
}

func (e *UnauthorizedError) Unwrap() error {
	return apperrors.ErrUnauthorized
}

// ResponseError is a non-success HTTP status or a BaseResponse with success=false.
type ResponseError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *ResponseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *ResponseError) Unwrap() error {
	return apperrors.ErrAPIResponse
}

package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// APIError is the error object carried by a BaseResponse.
type APIError struct {
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// BaseResponse is the envelope most endpoints wrap their payload in.
type BaseResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *APIError      `json:"error,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// errorBody accepts the shapes error responses come in: a BaseResponse, a bare message,
// or a framework "detail" string.
type errorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
	Error   *APIError       `json:"error"`
}

func decodeErrorBody(statusCode int, data []byte) *ResponseError {
	respErr := &ResponseError{StatusCode: statusCode, Message: http.StatusText(statusCode)}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		if text := strings.TrimSpace(string(data)); text != "" && len(text) < 512 {
			respErr.Message = text
		}
		return respErr
	}

	switch {
	case body.Error != nil && body.Error.Message != "":
		respErr.Message = body.Error.Message
		respErr.Code = body.Error.Code
	case body.Message != "":
		respErr.Message = body.Message
	case len(body.Detail) > 0:
		var detail string
		if json.Unmarshal(body.Detail, &detail) == nil && detail != "" {
			respErr.Message = detail
		}
	}
	return respErr
}

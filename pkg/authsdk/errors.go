package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

// APIError is the error envelope returned by the token service. It is used
// by the server to write responses and by the client to report them.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the stable numeric error code (see httpx.Code*)
	Code int `json:"code"`

	Message string `json:"message,omitempty"`

	// Errors holds per-field messages for validation failures.
	Errors map[string][]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authsdk: error %d (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("authsdk: error %d: %s", e.Code, e.Message)
}

// Is matches on Code so callers can write errors.Is(err, authsdk.ErrForbidden).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes e using the standard error envelope.
func (e *APIError) WriteError(w http.ResponseWriter) {
	if len(e.Errors) > 0 {
		httpx.WriteFail(w, e.Errors)
		return
	}
	httpx.WriteError(w, e.StatusCode, e.Code, e.Message)
}

// WithMessage returns a copy of e carrying msg.
func (e *APIError) WithMessage(msg string) *APIError {
	c := *e
	c.Message = msg
	return &c
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       httpx.CodeInvalidRequest,
		Message:    "The request is malformed.",
	}

	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       httpx.CodeUnauthorized,
		Message:    "Unauthorized.",
	}

	ErrForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       httpx.CodeForbidden,
		Message:    "Permission denied.",
	}

	// ErrInvalidRefreshToken covers unknown, expired, reused and mismatched
	// refresh tokens alike.
	ErrInvalidRefreshToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       httpx.CodeInvalidRefreshToken,
		Message:    "Invalid refresh token.",
	}

	ErrTemporaryTokenExpiredOrUsed = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       httpx.CodeTemporaryTokenExpiredOrUsed,
		Message:    "The temporary token has expired or was already used.",
	}

	ErrTemporaryTokenUsageMismatch = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       httpx.CodeTemporaryTokenUsageMismatch,
		Message:    "The temporary token was issued for a different usage.",
	}

	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       httpx.CodeRateLimited,
		Message:    "Too many requests. Please try again later.",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       httpx.CodeServerError,
		Message:    "Internal server error.",
	}

	ErrServiceUnavailable = &APIError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       httpx.CodeServerError,
		Message:    "Service temporarily unavailable.",
	}
)

// NewValidationError builds the 400 "fail" response for field errors.
func NewValidationError(fields map[string][]string) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       httpx.CodeInvalidRequest,
		Message:    "One or more validation errors occurred.",
		Errors:     fields,
	}
}

// parseErrorResponse turns a non-success response into an *APIError. Bodies
// that are not an envelope get a code derived from the status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var eb httpx.ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Code != 0 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       eb.Code,
			Message:    eb.Message,
			Errors:     eb.Errors,
		}
	}

	code := httpx.CodeServerError
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		code = httpx.CodeUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		code = httpx.CodeForbidden
	case resp.StatusCode == http.StatusTooManyRequests:
		code = httpx.CodeRateLimited
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		code = httpx.CodeInvalidRequest
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       code,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Stable error codes carried in the envelope. Clients switch on these, not
// on the message.
const (
	CodeInvalidRequest              = 10000
	CodeUnauthorized                = 10001
	CodeForbidden                   = 10002
	CodeInvalidRefreshToken         = 10003
	CodeTemporaryTokenExpiredOrUsed = 10004
	CodeTemporaryTokenUsageMismatch = 10005
	CodeRateLimited                 = 10429
	CodeServerError                 = 10500
)

// SuccessBody wraps a successful payload.
type SuccessBody struct {
	Status string `json:"status" example:"success"`
	Data   any    `json:"data,omitempty"`
}

// ErrorBody is returned for every failure. Errors is set only for
// validation failures and maps field names to messages.
type ErrorBody struct {
	Status  string              `json:"status" example:"error"`
	Code    int                 `json:"code" example:"10001"`
	Message string              `json:"message,omitempty" example:"Unauthorized."`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, SuccessBody{Status: StatusSuccess, Data: data})
}

func WriteError(w http.ResponseWriter, status, code int, message string) {
	WriteJSON(w, status, ErrorBody{Status: StatusError, Code: code, Message: message})
}

// WriteFail answers 400 with per-field validation messages.
func WriteFail(w http.ResponseWriter, errs map[string][]string) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{
		Status:  StatusFail,
		Code:    CodeInvalidRequest,
		Message: "One or more validation errors occurred.",
		Errors:  errs,
	})
}

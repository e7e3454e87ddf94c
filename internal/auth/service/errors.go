package service

import "errors"

var (
	ErrInvalidRefresh              = errors.New("invalid_refresh_token")
	ErrTemporaryTokenExpiredOrUsed = errors.New("temporary_token_expired_or_used")
	ErrTemporaryTokenUsageMismatch = errors.New("temporary_token_usage_mismatch")
	ErrInvalidArgument             = errors.New("invalid_argument")

	// ErrUnavailable wraps store failures. Callers may retry; the service
	// never does.
	ErrUnavailable = errors.New("store_unavailable")
)

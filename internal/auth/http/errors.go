package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// writeServiceError maps a TokenService error onto the envelope. Token
// decode failures on the refresh path are reported as an invalid refresh
// token so callers cannot probe which check failed.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrInvalidRefresh),
		errors.Is(err, jwtx.ErrMalformed),
		errors.Is(err, jwtx.ErrAlgMismatch),
		errors.Is(err, jwtx.ErrUnknownKID),
		errors.Is(err, jwtx.ErrInvalidSig),
		errors.Is(err, jwtx.ErrIssuer),
		errors.Is(err, jwtx.ErrAudience),
		errors.Is(err, jwtx.ErrNotYetValid):
		authsdk.ErrInvalidRefreshToken.WriteError(w)
	case errors.Is(err, service.ErrTemporaryTokenExpiredOrUsed):
		authsdk.ErrTemporaryTokenExpiredOrUsed.WriteError(w)
	case errors.Is(err, service.ErrTemporaryTokenUsageMismatch):
		authsdk.ErrTemporaryTokenUsageMismatch.WriteError(w)
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, jwtx.ErrInvalidClaim):
		authsdk.ErrInvalidRequest.WithMessage(err.Error()).WriteError(w)
	case errors.Is(err, service.ErrUnavailable):
		log.Error("store unavailable", "err", err)
		authsdk.ErrServiceUnavailable.WriteError(w)
	default:
		log.Error("unexpected service error", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

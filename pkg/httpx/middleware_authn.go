package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// TokenVerifier checks a bearer token and returns its principal.
// *jwtx.Codec satisfies it.
type TokenVerifier interface {
	Verify(token string) (*jwtx.Principal, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <t>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthnMiddleware resolves the bearer token into a principal. Requests
// without a valid token continue anonymously; the rejection is kept in the
// context so Authorize can answer 401 where authentication is required.
func AuthnMiddleware(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			p, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("jwt verify failed", "err", err)
				ctx = contextWithAuthnError(ctx, err)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithPrincipal(ctx, p, raw)))
		})
	}
}

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !PrincipalFromContext(r.Context()).IsAuthenticated() {
			writeChallenge(w, AuthnErrorFromContext(r.Context()) != nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeChallenge answers 401 with an RFC 6750 WWW-Authenticate header.
func writeChallenge(w http.ResponseWriter, invalidToken bool) {
	if invalidToken {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	} else {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized.")
}

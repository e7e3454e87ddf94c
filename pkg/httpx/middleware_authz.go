package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/pkg/authz"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// Authorize resolves the policy for ep from provider and evaluates it for
// the request principal. Challenged results answer 401, denials 403 and
// validator failures 500.
func Authorize(ep *authz.Endpoint, provider authz.PolicyProvider, eval *authz.Evaluator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			policy := authz.ResolvePolicy(provider, ep)
			if policy == nil {
				next.ServeHTTP(w, r)
				return
			}

			if policy.RequiresAuthentication() && AuthnErrorFromContext(ctx) != nil {
				writeChallenge(w, true)
				return
			}

			res, err := eval.Authorize(ctx, PrincipalFromContext(ctx), policy)
			switch {
			case err != nil:
				slogx.FromContext(ctx).Error("authorization check failed", "route", endpointRoute(ep), "err", err)
				WriteError(w, http.StatusInternalServerError, CodeServerError, authz.ReasonValidatorError)
			case res.Succeeded:
				next.ServeHTTP(w, r)
			case res.Challenged:
				writeChallenge(w, false)
			default:
				slogx.FromContext(ctx).Info("authorization denied", "route", endpointRoute(ep), "reasons", res.Reasons)
				WriteError(w, http.StatusForbidden, CodeForbidden, authz.ReasonDenied)
			}
		})
	}
}

func endpointRoute(ep *authz.Endpoint) string {
	if ep == nil {
		return ""
	}
	return ep.Route
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// ServeUserInfo godoc
//
//	@Summary		Get the current principal
//	@Description	Returns subject, roles and extra claims of the presented access token.
//	@Description	Requires the profile:read permission (or a route grant in route mode).
//	@Tags			Identity
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	httpx.SuccessBody{data=authsdk.UserInfoResponse}
//	@Failure		401	{object}	httpx.ErrorBody	"10001 unauthorized"
//	@Failure		403	{object}	httpx.ErrorBody	"10002 forbidden"
//	@Router			/v1/userinfo [get]
func ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	p := httpx.PrincipalFromContext(r.Context())
	if !p.IsAuthenticated() {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	resp := authsdk.UserInfoResponse{
		Subject: p.Subject(),
		Roles:   p.Roles(),
	}
	for _, c := range p.Claims {
		switch c.Type {
		case p.SubjectClaimType(), p.RoleClaimType(), jwtx.ClaimRefreshTokenID:
			continue
		}
		resp.Claims = append(resp.Claims, authsdk.Claim{Type: c.Type, Value: c.Value})
	}

	httpx.WriteSuccess(w, http.StatusOK, resp)
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// TokenHandler serves the token pair endpoints.
type TokenHandler struct {
	TokenService *service.TokenService
	router       *Router
}

func (h *TokenHandler) response(pair *domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.TokenService.AccessTokenTTL().Seconds()),
	}
}

// HandleIssue godoc
//
//	@Summary		Issue a token pair
//	@Description	Mints an access token and a single-use refresh token for a user. Trusted callers only.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			X-Issuer-Key	header		string						true	"Issuer API key"
//	@Param			body			body		authsdk.IssueTokenRequest	true	"Subject, roles and extra claims"
//	@Success		200				{object}	httpx.SuccessBody{data=authsdk.TokenResponse}
//	@Failure		400				{object}	httpx.ErrorBody	"10000 invalid request"
//	@Failure		401				{object}	httpx.ErrorBody	"10001 invalid issuer key"
//	@Failure		429				{object}	httpx.ErrorBody	"10429 rate limited"
//	@Failure		503				{object}	httpx.ErrorBody	"10500 store unavailable"
//	@Router			/v1/token [post]
func (h *TokenHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	var req authsdk.IssueTokenRequest
	if !h.router.decodeRequest(w, r, &req) {
		return
	}

	claims := make([]jwtx.Claim, 0, len(req.Claims))
	for _, c := range req.Claims {
		claims = append(claims, jwtx.Claim{Type: c.Type, Value: c.Value})
	}

	pair, err := h.TokenService.IssueToken(r.Context(), req.UserID, req.Roles, claims)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, h.response(pair))
}

// HandleRefresh godoc
//
//	@Summary		Refresh a token pair
//	@Description	Exchanges an access token (expired or not) and its refresh token for a new pair.
//	@Description	The refresh token is consumed; presenting it again fails with 10003.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RefreshTokenRequest	true	"Current pair"
//	@Success		200		{object}	httpx.SuccessBody{data=authsdk.TokenResponse}
//	@Failure		400		{object}	httpx.ErrorBody	"10000 invalid request"
//	@Failure		401		{object}	httpx.ErrorBody	"10003 invalid refresh token"
//	@Failure		503		{object}	httpx.ErrorBody	"10500 store unavailable"
//	@Router			/v1/token/refresh [post]
func (h *TokenHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshTokenRequest
	if !h.router.decodeRequest(w, r, &req) {
		return
	}

	pair, err := h.TokenService.RefreshToken(r.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, h.response(pair))
}

// HandleRevoke godoc
//
//	@Summary		Revoke the refresh token
//	@Description	Deletes the refresh token bound to the presented access token. Idempotent.
//	@Description	The access token itself stays valid until it expires.
//	@Tags			Tokens
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	httpx.SuccessBody
//	@Failure		401	{object}	httpx.ErrorBody	"10001 unauthorized"
//	@Failure		503	{object}	httpx.ErrorBody	"10500 store unavailable"
//	@Router			/v1/token/revoke [post]
func (h *TokenHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := h.TokenService.RevokeRefreshToken(r.Context(), httpx.TokenFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, nil)
}

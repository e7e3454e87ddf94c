package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

// TemporaryTokenHandler serves single-use, usage-bound tokens such as
// password reset or email confirmation links.
type TemporaryTokenHandler struct {
	TokenService *service.TokenService
	router       *Router
}

// HandleIssue godoc
//
//	@Summary		Issue a temporary token
//	@Description	Stores a single-use token bound to a usage. Trusted callers only.
//	@Tags			Temporary tokens
//	@Accept			json
//	@Produce		json
//	@Param			X-Issuer-Key	header		string							true	"Issuer API key"
//	@Param			body			body		authsdk.TemporaryTokenRequest	true	"User, usage and optional lifetime"
//	@Success		201				{object}	httpx.SuccessBody{data=authsdk.TemporaryTokenResponse}
//	@Failure		400				{object}	httpx.ErrorBody	"10000 invalid request"
//	@Failure		401				{object}	httpx.ErrorBody	"10001 invalid issuer key"
//	@Failure		503				{object}	httpx.ErrorBody	"10500 store unavailable"
//	@Router			/v1/temporary-tokens [post]
func (h *TemporaryTokenHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TemporaryTokenRequest
	if !h.router.decodeRequest(w, r, &req) {
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = service.DefaultTemporaryTokenTTL
	}

	token, err := h.TokenService.IssueTemporaryToken(r.Context(), req.UserID, req.Usage, ttl)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, authsdk.TemporaryTokenResponse{
		Token:     token,
		ExpiresIn: int64(ttl.Seconds()),
	})
}

// HandleValidate godoc
//
//	@Summary		Validate and consume a temporary token
//	@Description	Returns the user the token was issued for and deletes it.
//	@Tags			Temporary tokens
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.ValidateTemporaryTokenRequest	true	"Token and expected usage"
//	@Success		200		{object}	httpx.SuccessBody{data=authsdk.ValidateTemporaryTokenResponse}
//	@Failure		400		{object}	httpx.ErrorBody	"10004 expired or used, 10005 usage mismatch"
//	@Failure		503		{object}	httpx.ErrorBody	"10500 store unavailable"
//	@Router			/v1/temporary-tokens/validate [post]
func (h *TemporaryTokenHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ValidateTemporaryTokenRequest
	if !h.router.decodeRequest(w, r, &req) {
		return
	}

	userID, err := h.TokenService.ValidateTemporaryToken(r.Context(), req.Token, req.Usage)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, authsdk.ValidateTemporaryTokenResponse{UserID: userID})
}

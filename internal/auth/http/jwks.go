package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// JWKSHandler exposes the JSON Web Key Set for public key discovery. It is
// only routed when tokens are signed with RS256.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify RS256 access tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authsdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get]
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.JWKSResponse(keys.PublicJWKS()))
	}
}

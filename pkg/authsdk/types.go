package authsdk

import "github.com/aussiebroadwan/tokenauth/pkg/jwtx"

// ============================================================================
// Token Types
// ============================================================================

// Claim is an extra claim embedded in an issued access token. Registered
// claims (iss, aud, exp, nbf, iat) are rejected by the server.
type Claim struct {
	Type  string `json:"type"  validate:"required,max=128,claimtype" example:"tenant"`
	Value string `json:"value" validate:"max=1024"         example:"acme"`
}

// IssueTokenRequest is the body of POST /v1/token.
type IssueTokenRequest struct {
	// UserID becomes the token subject.
	UserID string `json:"user_id" validate:"required,max=256" example:"alice"`

	Roles  []string `json:"roles,omitempty"  validate:"max=64,dive,required,max=128" example:"admin"`
	Claims []Claim  `json:"claims,omitempty" validate:"max=64,dive"`
}

// RefreshTokenRequest is the body of POST /v1/token/refresh. The access
// token may already be expired.
type RefreshTokenRequest struct {
	AccessToken  string `json:"access_token"  validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"Bearer"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in" example:"10800"`
}

// ============================================================================
// Temporary Token Types
// ============================================================================

// TemporaryTokenRequest is the body of POST /v1/temporary-tokens.
type TemporaryTokenRequest struct {
	UserID string `json:"user_id" validate:"required,max=256" example:"alice"`
	Usage  string `json:"usage"   validate:"required,max=64"  example:"reset_password"`

	// TTLSeconds defaults to five minutes when zero.
	TTLSeconds int64 `json:"ttl_seconds,omitempty" validate:"omitempty,min=1,max=86400" example:"300"`
}

type TemporaryTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in" example:"300"`
}

// ValidateTemporaryTokenRequest is the body of POST /v1/temporary-tokens/validate.
// A successful validation consumes the token.
type ValidateTemporaryTokenRequest struct {
	Token string `json:"token" validate:"required"`
	Usage string `json:"usage" validate:"required,max=64" example:"reset_password"`
}

type ValidateTemporaryTokenResponse struct {
	UserID string `json:"user_id" example:"alice"`
}

// ============================================================================
// Identity Types
// ============================================================================

// UserInfoResponse describes the principal behind the presented access token.
type UserInfoResponse struct {
	Subject string   `json:"sub"             example:"alice"`
	Roles   []string `json:"roles,omitempty" example:"admin"`
	Claims  []Claim  `json:"claims,omitempty"`
}

// ============================================================================
// System Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Store indicates the key-value store connection status
	Store string `json:"store"`

	// Signer indicates the JWT signing capability status
	Signer string `json:"signer"`
}

// JWKSResponse contains the JSON Web Key Set.
// This is returned from the GET /.well-known/jwks.json endpoint and contains
// public keys used to verify JWT signatures.
type JWKSResponse jwtx.JWKS

// envelope is the success wrapper every endpoint except JWKS uses.
type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

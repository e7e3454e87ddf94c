package auth_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenauth/internal/auth/app"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
)

/*
 * Common constants and helpers for the end-to-end tests. The service runs
 * in-process behind httptest and is driven through the public SDK.
 */

const (
	issuerKey  = "e2e-issuer-key-0123456789"
	jwtSecret  = "e2e-secret-0123456789abcdef012345"
	testIssuer = "tokenauth-e2e"
)

var issuerKeyHash = func() string {
	h, err := cryptox.Hasher{}.Hash(issuerKey)
	if err != nil {
		panic(err)
	}
	return h
}()

// testConfig is a memory-backed HS256 setup with permission authorization.
func testConfig() app.Config {
	return app.Config{
		Env: "dev",
		HTTP: app.HTTPConfig{
			Addr:                "127.0.0.1:0",
			ReadHeaderTimeout:   time.Second,
			ShutdownGracePeriod: time.Second,
		},
		Log: app.LogConfig{Level: "error", Format: "json"},
		JWT: app.JWTConfig{
			Secret:           jwtSecret,
			RSABits:          2048,
			Issuer:           testIssuer,
			Audience:         "e2e",
			ValidateIssuer:   true,
			ValidateAudience: true,
			SubjectClaimType: "sub",
			RoleClaimType:    "role",
			AccessTTL:        time.Hour,
			RefreshTTL:       24 * time.Hour,
		},
		Store: app.StoreConfig{Driver: "memory"},
		Authorization: app.AuthorizationConfig{
			Mode:        "permission",
			Permissions: map[string][]string{"admin": {"*"}, "user": {"profile:read"}},
			Routes:      map[string][]string{"admin": {"*"}, "user": {"GET /v1/userinfo"}},
		},
		Issuer: app.IssuerConfig{
			KeyHash:        issuerKeyHash,
			RateLimit:      1000,
			RateLimitBurst: 1000,
			RateWindow:     time.Minute,
		},
		HousekeepingInterval: time.Hour,
	}
}

// setupAuthServer starts the service and returns an SDK client holding the
// issuer key.
func setupAuthServer(t *testing.T, mutate func(*app.Config)) *authsdk.SDKClient {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, a.Close())
	})

	client := authsdk.NewSDKClient(srv.URL)
	client.IssuerKey = issuerKey
	return client
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, resp *authsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType, "Token type should be Bearer")
	require.Positive(t, resp.ExpiresIn)
}

// assertAPIError checks err is an *authsdk.APIError with the given code.
func assertAPIError(t *testing.T, err error, want *authsdk.APIError) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, want, "got %v", err)
}

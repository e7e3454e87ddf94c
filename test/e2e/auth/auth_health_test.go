package auth_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenauth/internal/auth/app"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

func TestHealthEndpoints(t *testing.T) {
	client := setupAuthServer(t, nil)

	live, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Store)
	require.Equal(t, "ok", ready.Checks.Signer)
}

func TestJWKSVerifiesIssuedTokens(t *testing.T) {
	client := setupAuthServer(t, func(c *app.Config) {
		c.JWT.Secret = ""
		c.JWT.RSAKeyPath = filepath.Join(t.TempDir(), "signing.pem")
	})
	ctx := t.Context()

	jwks, err := client.GetJWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)

	pair, err := client.IssueToken(ctx, authsdk.IssueTokenRequest{UserID: "alice", Roles: []string{"admin"}})
	require.NoError(t, err)

	// An offline verifier built only from the published keys.
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.ResetFromJWKS(jwtx.JWKS(*jwks)))
	verifier, err := jwtx.NewCodec(jwtx.CodecOptions{
		Keys:     keys,
		Issuer:   testIssuer,
		Audience: "e2e",
	})
	require.NoError(t, err)

	p, err := verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", p.Subject())
	require.True(t, p.IsInRole("admin"))
}

func TestJWKSAbsentForHS256(t *testing.T) {
	client := setupAuthServer(t, nil)
	_, err := client.GetJWKS(t.Context())
	require.Error(t, err)
}

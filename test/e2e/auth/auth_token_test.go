package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenauth/internal/auth/app"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
)

// TestAdminRefreshAfterExpiry walks the canonical flow:
// 1. Issue a pair for alice with the admin role
// 2. Let the access token expire
// 3. Refresh with the expired access token and the refresh token
// 4. The new access token carries the same identity; the old refresh token is spent
func TestAdminRefreshAfterExpiry(t *testing.T) {
	client := setupAuthServer(t, func(c *app.Config) { c.JWT.AccessTTL = 2 * time.Second })
	ctx := t.Context()

	pair, err := client.IssueToken(ctx, authsdk.IssueTokenRequest{UserID: "alice", Roles: []string{"admin"}})
	require.NoError(t, err)
	assertTokenResponse(t, pair)

	time.Sleep(3 * time.Second)

	expired := client.NewSessionFromTokens(pair.AccessToken, "")
	_, err = expired.UserInfo(ctx)
	require.Error(t, err, "expired token must not authenticate")

	rotated, err := client.RefreshToken(ctx, pair.AccessToken, pair.RefreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, rotated)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken, "Refresh token should be rotated")

	info, err := client.NewSessionFromTokens(rotated.AccessToken, "").UserInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", info.Subject)
	require.Equal(t, []string{"admin"}, info.Roles)

	_, err = client.RefreshToken(ctx, pair.AccessToken, pair.RefreshToken)
	assertAPIError(t, err, authsdk.ErrInvalidRefreshToken)
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	client := setupAuthServer(t, nil)
	ctx := t.Context()

	pair, err := client.IssueToken(ctx, authsdk.IssueTokenRequest{UserID: "bob"})
	require.NoError(t, err)

	const attempts = 8
	errs := make(chan error, attempts)
	for range attempts {
		go func() {
			_, err := client.RefreshToken(ctx, pair.AccessToken, pair.RefreshToken)
			errs <- err
		}()
	}

	succeeded := 0
	for range attempts {
		if err := <-errs; err == nil {
			succeeded++
		} else {
			assertAPIError(t, err, authsdk.ErrInvalidRefreshToken)
		}
	}
	require.Equal(t, 1, succeeded)
}

func TestRefreshWithForeignAccessToken(t *testing.T) {
	client := setupAuthServer(t, nil)
	ctx := t.Context()

	alice, err := client.IssueToken(ctx, authsdk.IssueTokenRequest{UserID: "alice"})
	require.NoError(t, err)
	bob, err := client.IssueToken(ctx, authsdk.IssueTokenRequest{UserID: "bob"})
	require.NoError(t, err)

	_, err = client.RefreshToken(ctx, bob.AccessToken, alice.RefreshToken)
	assertAPIError(t, err, authsdk.ErrInvalidRefreshToken)

	// Alice's record survives the failed attempt.
	_, err = client.RefreshToken(ctx, alice.AccessToken, alice.RefreshToken)
	require.NoError(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	client := setupAuthServer(t, nil)
	ctx := t.Context()

	session, err := client.Authenticate(ctx, authsdk.IssueTokenRequest{
		UserID: "carol",
		Roles:  []string{"user"},
		Claims: []authsdk.Claim{{Type: "tenant", Value: "acme"}},
	})
	require.NoError(t, err)

	info, err := session.UserInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "carol", info.Subject)
	require.Equal(t, []authsdk.Claim{{Type: "tenant", Value: "acme"}}, info.Claims)

	before := session.RefreshToken()
	require.NoError(t, session.Refresh(ctx))
	require.NotEqual(t, before, session.RefreshToken())

	require.NoError(t, session.Revoke(ctx))
	require.ErrorIs(t, session.Refresh(ctx), authsdk.ErrNoRefreshToken)
}

func TestIssueRequiresIssuerKey(t *testing.T) {
	client := setupAuthServer(t, nil)
	ctx := t.Context()

	client.IssuerKey = "not-the-key"
	_, err := client.IssueToken(ctx, authsdk.IssueTokenRequest{UserID: "mallory"})
	assertAPIError(t, err, authsdk.ErrUnauthorized)

	client.IssuerKey = issuerKey
	_, err = client.IssueToken(ctx, authsdk.IssueTokenRequest{UserID: ""})
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Contains(t, apiErr.Errors, "user_id")
}

func TestUserInfoForbiddenWithoutGrant(t *testing.T) {
	for _, mode := range []string{"permission", "route"} {
		t.Run(mode, func(t *testing.T) {
			client := setupAuthServer(t, func(c *app.Config) { c.Authorization.Mode = mode })

			session, err := client.Authenticate(t.Context(), authsdk.IssueTokenRequest{UserID: "dave", Roles: []string{"guest"}})
			require.NoError(t, err)

			_, err = session.UserInfo(t.Context())
			assertAPIError(t, err, authsdk.ErrForbidden)
		})
	}
}

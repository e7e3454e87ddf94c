package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
)

func TestTemporaryTokenSingleUse(t *testing.T) {
	client := setupAuthServer(t, nil)
	ctx := t.Context()

	tmp, err := client.IssueTemporaryToken(ctx, authsdk.TemporaryTokenRequest{
		UserID:     "alice",
		Usage:      "reset_password",
		TTLSeconds: 60,
	})
	require.NoError(t, err)
	require.EqualValues(t, 60, tmp.ExpiresIn)
	require.Len(t, tmp.Token, 32)

	_, err = client.ValidateTemporaryToken(ctx, tmp.Token, "confirm_email")
	assertAPIError(t, err, authsdk.ErrTemporaryTokenExpiredOrUsed)

	userID, err := client.ValidateTemporaryToken(ctx, tmp.Token, "reset_password")
	require.NoError(t, err)
	require.Equal(t, "alice", userID)

	_, err = client.ValidateTemporaryToken(ctx, tmp.Token, "reset_password")
	assertAPIError(t, err, authsdk.ErrTemporaryTokenExpiredOrUsed)
}

func TestTemporaryTokenRequiresIssuerKey(t *testing.T) {
	client := setupAuthServer(t, nil)
	client.IssuerKey = ""

	_, err := client.IssueTemporaryToken(t.Context(), authsdk.TemporaryTokenRequest{UserID: "alice", Usage: "x"})
	require.Error(t, err)
}

/*
Package authsdk is a client for the tokenauth service.

# SDKClient vs Session

SDKClient covers the unauthenticated and trusted-caller endpoints. A
Session wraps one token pair and refreshes it shortly before the access
token expires:

	client := authsdk.NewSDKClient("https://auth.example.com")
	client.IssuerKey = os.Getenv("TOKENAUTH_ISSUER_KEY")

	session, err := client.Authenticate(ctx, authsdk.IssueTokenRequest{
		UserID: "alice",
		Roles:  []string{"admin"},
	})

	info, err := session.UserInfo(ctx)

Refresh tokens are single use. A Session serialises refreshes so concurrent
callers never present the same refresh token twice.

# Temporary tokens

Temporary tokens are opaque, single-use and bound to a usage string such as
"reset_password":

	tmp, err := client.IssueTemporaryToken(ctx, authsdk.TemporaryTokenRequest{
		UserID: "alice",
		Usage:  "reset_password",
	})

	userID, err := client.ValidateTemporaryToken(ctx, tmp.Token, "reset_password")

# Errors

Failures are returned as *APIError and match the exported sentinels through
errors.Is:

	if errors.Is(err, authsdk.ErrInvalidRefreshToken) {
		// sign in again
	}
*/
package authsdk

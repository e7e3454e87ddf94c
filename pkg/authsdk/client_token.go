package authsdk

import (
	"context"
	"net/http"
)

// IssueToken mints a token pair for a user. Requires IssuerKey.
func (c *SDKClient) IssueToken(ctx context.Context, req IssueTokenRequest) (*TokenResponse, error) {
	headers, err := c.issuerHeaders()
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/token", req, headers)
	if err != nil {
		return nil, err
	}

	tok, err := decodeEnvelope[TokenResponse](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// RefreshToken exchanges a token pair for a new one. The refresh token is
// single use: a successful call invalidates it.
func (c *SDKClient) RefreshToken(ctx context.Context, accessToken, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/token/refresh", RefreshTokenRequest{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil)
	if err != nil {
		return nil, err
	}

	tok, err := decodeEnvelope[TokenResponse](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// Authenticate issues a token pair for req and wraps it in a Session.
func (c *SDKClient) Authenticate(ctx context.Context, req IssueTokenRequest) (*Session, error) {
	tok, err := c.IssueToken(ctx, req)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok.AccessToken, tok.RefreshToken), nil
}

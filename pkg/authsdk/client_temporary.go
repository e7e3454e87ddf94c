package authsdk

import (
	"context"
	"net/http"
)

// IssueTemporaryToken mints a single-use token bound to req.Usage. Requires
// IssuerKey.
func (c *SDKClient) IssueTemporaryToken(ctx context.Context, req TemporaryTokenRequest) (*TemporaryTokenResponse, error) {
	headers, err := c.issuerHeaders()
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/temporary-tokens", req, headers)
	if err != nil {
		return nil, err
	}

	out, err := decodeEnvelope[TemporaryTokenResponse](resp, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateTemporaryToken consumes token and returns the user it was issued
// for. A second call with the same token fails with
// ErrTemporaryTokenExpiredOrUsed.
func (c *SDKClient) ValidateTemporaryToken(ctx context.Context, token, usage string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/temporary-tokens/validate", ValidateTemporaryTokenRequest{
		Token: token,
		Usage: usage,
	}, nil)
	if err != nil {
		return "", err
	}

	out, err := decodeEnvelope[ValidateTemporaryTokenResponse](resp, http.StatusOK)
	if err != nil {
		return "", err
	}
	return out.UserID, nil
}

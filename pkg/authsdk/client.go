package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// IssuerKeyHeader carries the trusted caller key on issuing endpoints.
const IssuerKeyHeader = "X-Issuer-Key"

// SDKClient is a client for the token service. It covers the public and
// trusted-caller endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// IssuerKey is sent on POST /v1/token and POST /v1/temporary-tokens.
	// Only trusted backends hold it.
	IssuerKey string
}

// NewSDKClient creates a new token service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSessionFromTokens creates a session from an existing token pair, e.g.
// one persisted by a previous run. The session refreshes on demand.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string) *Session {
	return newSession(c, accessToken, refreshToken)
}

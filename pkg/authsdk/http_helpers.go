package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doRequest sends an optional JSON body. It does not add credentials.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body any,
	headers map[string]string,
) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// issuerHeaders returns the trusted caller header, or an error when the
// client has no issuer key configured.
func (c *SDKClient) issuerHeaders() (map[string]string, error) {
	if c.IssuerKey == "" {
		return nil, fmt.Errorf("authsdk: issuer key not configured")
	}
	return map[string]string{IssuerKeyHeader: c.IssuerKey}, nil
}

// doAuthRequest performs a request with the session's access token,
// refreshing it first if it is about to expire.
func (s *Session) doAuthRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.doRequest(ctx, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// decodeEnvelope reads a success envelope into T, or returns the typed error
// when the status differs from expectedStatus.
func decodeEnvelope[T any](resp *http.Response, expectedStatus int) (T, error) {
	var zero T
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return zero, parseErrorResponse(resp, bodyBytes)
	}

	var env envelope[T]
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		return zero, fmt.Errorf("failed to decode response: %w", err)
	}
	return env.Data, nil
}

// decodeJSON decodes an unwrapped JSON body such as JWKS or health output.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

package authsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshLeeway is how long before expiry a session refreshes.
const refreshLeeway = 30 * time.Second

// ErrNoRefreshToken is returned when the session cannot refresh.
var ErrNoRefreshToken = errors.New("authsdk: access token expired and no refresh token available")

// Session represents an authenticated session with automatic token refresh.
// All Session methods automatically handle token expiration and refresh when needed.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time // zero when the token carries no exp
}

func newSession(client *SDKClient, accessToken, refreshToken string) *Session {
	return &Session{
		client:       client,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    tokenExpiry(accessToken),
	}
}

// tokenExpiry reads exp without verifying the signature. The session only
// uses it to schedule refreshes; the server remains the authority.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func (s *Session) fresh(now time.Time) bool {
	return s.expiresAt.IsZero() || now.Add(refreshLeeway).Before(s.expiresAt)
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.fresh(time.Now()) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	now := time.Now()
	if s.fresh(now) {
		return s.accessToken, nil
	}
	// Without a refresh token, a token inside the leeway is still usable.
	if s.refreshToken == "" && now.Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return ErrNoRefreshToken
	}

	tok, err := s.client.RefreshToken(ctx, s.accessToken, s.refreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.expiresAt = tokenExpiry(tok.AccessToken)
	return nil
}

// Refresh rotates the token pair now, regardless of expiry.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// Revoke invalidates the session's refresh token on the server. The access
// token stays valid until it expires.
func (s *Session) Revoke(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/token/revoke", nil)
	if err != nil {
		return err
	}
	if _, err := decodeEnvelope[struct{}](resp, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.refreshToken = ""
	s.mu.Unlock()
	return nil
}

// UserInfo returns the server's view of the session principal.
func (s *Session) UserInfo(ctx context.Context) (*UserInfoResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/userinfo", nil)
	if err != nil {
		return nil, err
	}
	info, err := decodeEnvelope[UserInfoResponse](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// AccessToken returns the current access token without checking expiration.
// For most use cases, prefer using the Session methods which handle refresh automatically.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// ExpiresAt reports the access token expiry, or the zero time if unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

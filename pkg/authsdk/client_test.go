package authsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

func signed(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func newServer(t *testing.T, mux *http.ServeMux) *authsdk.SDKClient {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return authsdk.NewSDKClient(srv.URL + "/")
}

func TestIssueTokenSendsIssuerKey(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(authsdk.IssuerKeyHeader) != "k3y" {
			authsdk.ErrUnauthorized.WriteError(w)
			return
		}
		var req authsdk.IssueTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		httpx.WriteSuccess(w, http.StatusOK, authsdk.TokenResponse{
			AccessToken:  "access-" + req.UserID,
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			ExpiresIn:    60,
		})
	})
	client := newServer(t, mux)

	_, err := client.IssueToken(context.Background(), authsdk.IssueTokenRequest{UserID: "alice"})
	require.Error(t, err, "no issuer key configured")

	client.IssuerKey = "wrong"
	_, err = client.IssueToken(context.Background(), authsdk.IssueTokenRequest{UserID: "alice"})
	require.ErrorIs(t, err, authsdk.ErrUnauthorized)

	client.IssuerKey = "k3y"
	tok, err := client.IssueToken(context.Background(), authsdk.IssueTokenRequest{UserID: "alice"})
	require.NoError(t, err)
	require.Equal(t, "access-alice", tok.AccessToken)
	require.EqualValues(t, 60, tok.ExpiresIn)
}

func TestErrorParsing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		authsdk.ErrInvalidRefreshToken.WriteError(w)
	})
	mux.HandleFunc("POST /v1/temporary-tokens/validate", func(w http.ResponseWriter, r *http.Request) {
		authsdk.NewValidationError(map[string][]string{"usage": {"is required"}}).WriteError(w)
	})
	mux.HandleFunc("GET /.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	client := newServer(t, mux)

	_, err := client.RefreshToken(context.Background(), "a", "r")
	require.ErrorIs(t, err, authsdk.ErrInvalidRefreshToken)
	require.NotErrorIs(t, err, authsdk.ErrUnauthorized)

	_, err = client.ValidateTemporaryToken(context.Background(), "t", "")
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, []string{"is required"}, apiErr.Errors["usage"])
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	_, err = client.GetJWKS(context.Background())
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, httpx.CodeInvalidRequest, apiErr.Code)
}

func TestTemporaryTokenRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/temporary-tokens", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteSuccess(w, http.StatusCreated, authsdk.TemporaryTokenResponse{Token: "tmp", ExpiresIn: 300})
	})
	mux.HandleFunc("POST /v1/temporary-tokens/validate", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.ValidateTemporaryTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "tmp", req.Token)
		require.Equal(t, "reset_password", req.Usage)
		httpx.WriteSuccess(w, http.StatusOK, authsdk.ValidateTemporaryTokenResponse{UserID: "alice"})
	})
	client := newServer(t, mux)
	client.IssuerKey = "k"

	tmp, err := client.IssueTemporaryToken(context.Background(), authsdk.TemporaryTokenRequest{UserID: "alice", Usage: "reset_password"})
	require.NoError(t, err)
	require.Equal(t, "tmp", tmp.Token)

	userID, err := client.ValidateTemporaryToken(context.Background(), tmp.Token, "reset_password")
	require.NoError(t, err)
	require.Equal(t, "alice", userID)
}

func TestSessionRefreshesNearExpiry(t *testing.T) {
	fresh := signed(t, "alice", time.Now().Add(time.Hour))
	var refreshes atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		var req authsdk.RefreshTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.RefreshToken != "r1" {
			authsdk.ErrInvalidRefreshToken.WriteError(w)
			return
		}
		httpx.WriteSuccess(w, http.StatusOK, authsdk.TokenResponse{AccessToken: fresh, RefreshToken: "r2"})
	})
	mux.HandleFunc("GET /v1/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+fresh {
			authsdk.ErrUnauthorized.WriteError(w)
			return
		}
		httpx.WriteSuccess(w, http.StatusOK, authsdk.UserInfoResponse{Subject: "alice"})
	})
	client := newServer(t, mux)

	// Inside the refresh leeway.
	session := client.NewSessionFromTokens(signed(t, "alice", time.Now().Add(5*time.Second)), "r1")

	const workers = 8
	subjects := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := session.UserInfo(context.Background())
			errs[i] = err
			if err == nil {
				subjects[i] = info.Subject
			}
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		require.Equal(t, "alice", subjects[i])
	}

	require.EqualValues(t, 1, refreshes.Load(), "concurrent callers share one refresh")
	require.Equal(t, "r2", session.RefreshToken())
	require.Equal(t, fresh, session.AccessToken())
	require.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt(), 5*time.Second)
}

func TestSessionWithoutRefreshToken(t *testing.T) {
	client := authsdk.NewSDKClient("http://127.0.0.1:0")
	session := client.NewSessionFromTokens(signed(t, "alice", time.Now().Add(-time.Minute)), "")

	_, err := session.UserInfo(context.Background())
	require.ErrorIs(t, err, authsdk.ErrNoRefreshToken)
}

func TestSessionUsesNearExpiryTokenWithoutRefresh(t *testing.T) {
	access := signed(t, "alice", time.Now().Add(10*time.Second))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+access {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		httpx.WriteSuccess(w, http.StatusOK, authsdk.UserInfoResponse{Subject: "alice"})
	})
	session := newServer(t, mux).NewSessionFromTokens(access, "")

	info, err := session.UserInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alice", info.Subject)
}

func TestSessionRevoke(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/token/revoke", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteSuccess(w, http.StatusOK, nil)
	})
	client := newServer(t, mux)
	session := client.NewSessionFromTokens(signed(t, "alice", time.Now().Add(time.Hour)), "r1")

	require.NoError(t, session.Revoke(context.Background()))
	require.Empty(t, session.RefreshToken())
}

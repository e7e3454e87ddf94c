package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenauth/pkg/idx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, slogx.ParseLevel(in), in)
	}
}

func TestNewWritesServiceFields(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "tokenauth", Version: "test", Env: "ci", Output: &buf})
	logger.Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "tokenauth", line["service"])
	require.Equal(t, "hello", line["msg"])
}

func TestFromContextDefaults(t *testing.T) {
	require.Same(t, slog.Default(), slogx.FromContext(context.Background()))
	require.Empty(t, slogx.RequestIDFromContext(context.Background()))
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen string
	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = slogx.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

		_, err := idx.Parse(seen)
		require.NoError(t, err)
		require.Equal(t, seen, rec.Header().Get(slogx.RequestIDHeader))

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, seen, line["req_id"])
		require.EqualValues(t, http.StatusTeapot, line["status"])
		require.Equal(t, "/livez", line["path"])
	})

	t.Run("keeps valid inbound id", func(t *testing.T) {
		want := idx.New().String()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(slogx.RequestIDHeader, want)
		h.ServeHTTP(httptest.NewRecorder(), req)
		require.Equal(t, want, seen)
	})

	t.Run("replaces junk inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(slogx.RequestIDHeader, "<script>")
		h.ServeHTTP(httptest.NewRecorder(), req)
		require.NotEqual(t, "<script>", seen)
	})
}

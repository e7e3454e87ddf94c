package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

const testHash = "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("AUTH_ISSUER_KEY_HASH", testHash)
}

func TestLoadConfigDefaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, "memory", cfg.Store.Driver)
	require.Equal(t, "permission", cfg.Authorization.Mode)
	require.True(t, cfg.JWT.ValidateIssuer)
	require.True(t, cfg.JWT.ValidateAudience)
	require.Equal(t, jwtx.DefaultAccessTokenTTL, cfg.JWT.AccessTTL)
	require.Equal(t, jwtx.DefaultRefreshTokenTTL, cfg.JWT.RefreshTTL)
	require.Equal(t, jwtx.ClaimSubject, cfg.JWT.SubjectClaimType)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("AUTH_JWT_ACCESS_TTL", "15m")

	path := filepath.Join(t.TempDir(), "tokenauth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jwt:
  issuer: https://auth.example.com
  audience: orders
  access_ttl: 1h
store:
  driver: sqlite
  dsn: file:auth.db
authorization:
  mode: route
  routes:
    user:
      - GET /v1/userinfo
  permissions:
    admin: ["*"]
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "https://auth.example.com", cfg.JWT.Issuer)
	require.Equal(t, "orders", cfg.JWT.Audience)
	require.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL, "env wins over file")
	require.Equal(t, "sqlite", cfg.Store.Driver)
	require.Equal(t, "route", cfg.Authorization.Mode)
	require.Equal(t, []string{"GET /v1/userinfo"}, cfg.Authorization.Routes["user"])
	require.Equal(t, []string{"*"}, cfg.Authorization.Permissions["admin"])
}

func TestLoadConfigMissingFile(t *testing.T) {
	setMinimalEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	setMinimalEnv(t)
	base, err := LoadConfig("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"valid", func(*Config) {}, true},
		{"rsa only", func(c *Config) { c.JWT.Secret = ""; c.JWT.RSAKeyPath = "key.pem" }, true},
		{"no signing key", func(c *Config) { c.JWT.Secret = "" }, false},
		{"short secret", func(c *Config) { c.JWT.Secret = "short" }, false},
		{"missing issuer", func(c *Config) { c.JWT.Issuer = "" }, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "etcd" }, false},
		{"redis without dsn", func(c *Config) { c.Store.Driver = "redis" }, false},
		{"unknown mode", func(c *Config) { c.Authorization.Mode = "abac" }, false},
		{"plain issuer key", func(c *Config) { c.Issuer.KeyHash = "hunter2" }, false},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantOK {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

package http

import (
	"net/http"
	"sync"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// issuerKeyGuard admits trusted callers presenting the issuer key. The key
// is stored as an argon2id hash; fingerprints of keys that verified are
// remembered so the hash runs once per distinct key.
type issuerKeyGuard struct {
	hasher cryptox.Hasher
	hash   string

	mu       sync.RWMutex
	verified map[string]struct{}
}

func newIssuerKeyGuard(hasher cryptox.Hasher, hash string) *issuerKeyGuard {
	return &issuerKeyGuard{hasher: hasher, hash: hash, verified: make(map[string]struct{})}
}

func (g *issuerKeyGuard) allow(key string) bool {
	if key == "" || g.hash == "" {
		return false
	}

	fp := cryptox.FingerprintToken(key)
	g.mu.RLock()
	_, ok := g.verified[fp]
	g.mu.RUnlock()
	if ok {
		return true
	}

	if err := g.hasher.Verify(key, g.hash); err != nil {
		return false
	}

	g.mu.Lock()
	g.verified[fp] = struct{}{}
	g.mu.Unlock()
	return true
}

func (g *issuerKeyGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.allow(r.Header.Get(authsdk.IssuerKeyHeader)) {
			slogx.FromContext(r.Context()).Warn("issuer key rejected")
			authsdk.ErrUnauthorized.WithMessage("Invalid issuer key.").WriteError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

package jwtx

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"math/big"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet holds public verification keys by kid. Safe for concurrent use so
// the JWKS handler and the codec can share one instance.
type KeySet struct {
	mu  sync.RWMutex
	jks JWKS
	pub map[string]*rsa.PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{pub: make(map[string]*rsa.PublicKey)}
}

// AddSigner registers the signer's public key.
func (k *KeySet) AddSigner(s Signer) error {
	return k.AddJWK(s.PublicJWK())
}

// AddJWK parses and registers a JWK. Re-adding a kid replaces it.
func (k *KeySet) AddJWK(j JWK) error {
	key, err := parseRSAJWK(j)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if _, exists := k.pub[j.Kid]; exists {
		for i := range k.jks.Keys {
			if k.jks.Keys[i].Kid == j.Kid {
				k.jks.Keys[i] = j
			}
		}
	} else {
		k.jks.Keys = append(k.jks.Keys, j)
	}
	k.pub[j.Kid] = key
	return nil
}

// Get returns the public key for kid.
func (k *KeySet) Get(kid string) (any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// PublicJWKS returns a snapshot suitable for serving over HTTP.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := JWKS{Keys: make([]JWK, len(k.jks.Keys))}
	copy(out.Keys, k.jks.Keys)
	return out
}

// IsReady is true once at least one key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub) > 0
}

// ResetFromJWKS swaps in a freshly fetched key set.
func (k *KeySet) ResetFromJWKS(jwks JWKS) error {
	next := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, j := range jwks.Keys {
		key, err := parseRSAJWK(j)
		if err != nil {
			return err
		}
		next[j.Kid] = key
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub = next
	k.jks = jwks
	return nil
}

func parseRSAJWK(j JWK) (*rsa.PublicKey, error) {
	if j.Kty != "RSA" {
		return nil, errors.New("jwtx: unsupported kty " + j.Kty)
	}
	if j.Kid == "" {
		return nil, errors.New("jwtx: jwk without kid")
	}
	nb, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, err
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}, nil
}

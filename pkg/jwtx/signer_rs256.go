package jwtx

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// RS256Signer signs tokens with an RSA private key and stamps the kid
// header so verifiers can pick the right public key.
type RS256Signer struct {
	kid string
	key *rsa.PrivateKey
}

// newRS256Signer accepts PKCS1 ("RSA PRIVATE KEY") and PKCS8 ("PRIVATE KEY")
// PEM blocks.
func newRS256Signer(kid string, pemKey []byte) (*RS256Signer, error) {
	if kid == "" {
		return nil, errors.New("jwtx: RS256 signer needs a kid")
	}

	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for RSA key")
	}

	var key *rsa.PrivateKey
	switch block.Type {
	case "RSA PRIVATE KEY":
		k, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS1: %w", err)
		}
		key = k
	case "PRIVATE KEY":
		priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
		}
		k, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("jwtx: not an RSA private key")
		}
		key = k
	default:
		return nil, fmt.Errorf("jwtx: unsupported PEM type %q", block.Type)
	}

	return &RS256Signer{kid: kid, key: key}, nil
}

func (s *RS256Signer) Alg() string { return jwt.SigningMethodRS256.Alg() }
func (s *RS256Signer) KID() string { return s.kid }

// Sign serialises and signs the payload.
func (s *RS256Signer) Sign(claims jwt.MapClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicJWK is what gets published on the JWKS endpoint.
func (s *RS256Signer) PublicJWK() JWK {
	return NewRSAJWK(s.kid, "sig", s.Alg(), &s.key.PublicKey)
}

func (s *RS256Signer) Validate() error {
	if s.key == nil {
		return errors.New("jwtx: nil RSA key")
	}
	return s.key.Validate()
}

package jwtx

import "github.com/golang-jwt/jwt/v5"

// Signer is anything that can sign a claim payload with an asymmetric key
// and publish the matching public key.
type Signer interface {
	Alg() string
	KID() string
	Sign(jwt.MapClaims) (string, error)
	PublicJWK() JWK
	Validate() error
}

// NewSignerRS256 creates an RS256 signer from PEM bytes.
func NewSignerRS256(kid string, pemKey []byte) (Signer, error) {
	return newRS256Signer(kid, pemKey)
}

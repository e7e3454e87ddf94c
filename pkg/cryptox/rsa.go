package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MinRSABits is the smallest RSA modulus we are willing to sign with.
const MinRSABits = 2048

// GenerateRSAKey returns a fresh PKCS8 "PRIVATE KEY" PEM block.
func GenerateRSAKey(bits int) ([]byte, error) {
	if bits < MinRSABits {
		return nil, fmt.Errorf("cryptox: RSA key size must be at least %d bits", MinRSABits)
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate RSA key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// LoadOrGenerateRSAKey reads a PEM private key from path. When the file does
// not exist a new key is generated and written with 0600 permissions so the
// signing key survives restarts.
func LoadOrGenerateRSAKey(path string, bits int) (pemKey []byte, generated bool, err error) {
	path = filepath.Clean(path)

	pemKey, err = os.ReadFile(path)
	if err == nil {
		return pemKey, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("cryptox: read RSA key: %w", err)
	}

	pemKey, err = GenerateRSAKey(bits)
	if err != nil {
		return nil, false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, false, fmt.Errorf("cryptox: create key dir: %w", err)
	}
	if err := os.WriteFile(path, pemKey, 0o600); err != nil {
		return nil, false, fmt.Errorf("cryptox: write RSA key: %w", err)
	}

	return pemKey, true, nil
}

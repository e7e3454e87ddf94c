package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

func newRSASigner(t *testing.T, kid string) jwtx.Signer {
	t.Helper()

	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privKey),
	})

	signer, err := jwtx.NewSignerRS256(kid, privPEM)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	return signer
}

func TestRS256EncodeAndDecode(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	signer := newRSASigner(t, "key-1")

	codec, err := jwtx.NewCodec(jwtx.CodecOptions{
		Secret:   testSecret,
		Issuer:   testIssuer,
		Audience: testAudience,
		Signer:   signer,
		Now:      clock.Now,
	})
	require.NoError(t, err)
	require.Equal(t, "RS256", codec.Alg())
	require.True(t, codec.Keys().IsReady())

	token, err := codec.Issue([]jwtx.Claim{{Type: "sub", Value: "alice"}, {Type: "role", Value: "admin"}}, time.Minute)
	require.NoError(t, err)

	p, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", p.Subject())
	require.Equal(t, []string{"admin"}, p.Roles())

	// A verifier holding only the published JWKS accepts the same token.
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.ResetFromJWKS(codec.Keys().PublicJWKS()))

	verifier, err := jwtx.NewCodec(jwtx.CodecOptions{
		Secret:   testSecret,
		Issuer:   testIssuer,
		Audience: testAudience,
		Keys:     keys,
		Now:      clock.Now,
	})
	require.NoError(t, err)

	p, err = verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", p.Subject())
}

func TestRS256UnknownKID(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	signing, err := jwtx.NewCodec(jwtx.CodecOptions{
		Issuer:   testIssuer,
		Audience: testAudience,
		Signer:   newRSASigner(t, "key-a"),
		Now:      clock.Now,
	})
	require.NoError(t, err)

	other, err := jwtx.NewCodec(jwtx.CodecOptions{
		Issuer:   testIssuer,
		Audience: testAudience,
		Signer:   newRSASigner(t, "key-b"),
		Now:      clock.Now,
	})
	require.NoError(t, err)

	token, err := signing.Issue([]jwtx.Claim{{Type: "sub", Value: "alice"}}, time.Minute)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestRS256OnlyCodecRejectsHS256(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	hs := newTestCodec(t, clock)
	token, err := hs.Issue([]jwtx.Claim{{Type: "sub", Value: "alice"}}, time.Minute)
	require.NoError(t, err)

	rsOnly, err := jwtx.NewCodec(jwtx.CodecOptions{
		Issuer:   testIssuer,
		Audience: testAudience,
		Signer:   newRSASigner(t, "key-1"),
		Now:      clock.Now,
	})
	require.NoError(t, err)

	_, err = rsOnly.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrAlgMismatch)
}

func TestNewSignerRS256RejectsBadInput(t *testing.T) {
	_, err := jwtx.NewSignerRS256("kid", []byte("not pem"))
	require.Error(t, err)

	_, err = jwtx.NewSignerRS256("", nil)
	require.Error(t, err)
}

func TestVerifyOnlyCodec(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	signing, err := jwtx.NewCodec(jwtx.CodecOptions{
		Issuer:   testIssuer,
		Audience: testAudience,
		Signer:   newRSASigner(t, "key-1"),
		Now:      clock.Now,
	})
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.ResetFromJWKS(signing.Keys().PublicJWKS()))
	verifier, err := jwtx.NewCodec(jwtx.CodecOptions{
		Issuer:   testIssuer,
		Audience: testAudience,
		Keys:     keys,
		Now:      clock.Now,
	})
	require.NoError(t, err)

	token, err := signing.Issue([]jwtx.Claim{{Type: "sub", Value: "alice"}}, time.Minute)
	require.NoError(t, err)
	_, err = verifier.Verify(token)
	require.NoError(t, err)

	_, err = verifier.Issue([]jwtx.Claim{{Type: "sub", Value: "alice"}}, time.Minute)
	require.ErrorIs(t, err, jwtx.ErrVerifyOnly)
}

package jwtx

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HS256 secret the codec accepts, in bytes.
const MinSecretLength = 32

var (
	ErrWeakSecret = errors.New("jwtx: signing secret too short")

	// ErrVerifyOnly is returned by Encode on a codec built from a key set
	// alone.
	ErrVerifyOnly = errors.New("jwtx: codec has no signing key")
)

// CodecOptions configures a Codec. The zero value of the Skip flags means
// issuer and audience are both enforced on decode.
type CodecOptions struct {
	// Secret is the shared HS256 key. Required unless Signer is set.
	Secret string

	Issuer   string
	Audience string

	SkipIssuerCheck   bool
	SkipAudienceCheck bool

	// SubjectClaimType and RoleClaimType default to "sub" and "role".
	SubjectClaimType string
	RoleClaimType    string

	// Signer switches encoding to an asymmetric algorithm. Tokens signed
	// with HS256 are still accepted on decode when Secret is set.
	Signer Signer

	// Keys resolves the "kid" header of asymmetric tokens. If Signer is set
	// and Keys is nil a KeySet holding only the signer's key is created.
	// A codec with Keys alone can verify but not encode.
	Keys *KeySet

	// Now is the clock used for iat, nbf and expiry checks.
	Now func() time.Time
}

// DecodeOptions controls per-call validation.
type DecodeOptions struct {
	// ValidateExpiry enforces exp and nbf with zero clock skew. Refresh
	// flows turn it off so an expired access token can still be rotated.
	ValidateExpiry bool
}

// Codec turns claim sets into compact signed tokens and back.
type Codec struct {
	secret []byte
	signer Signer
	keys   *KeySet

	issuer   string
	audience string

	checkIssuer   bool
	checkAudience bool

	subjectType string
	roleType    string

	now func() time.Time
}

// NewCodec validates the options and returns a ready Codec.
func NewCodec(opts CodecOptions) (*Codec, error) {
	if opts.Secret == "" && opts.Signer == nil && opts.Keys == nil {
		return nil, errors.New("jwtx: codec needs a secret, a signer or a key set")
	}
	if opts.Secret != "" && len(opts.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLength)
	}

	c := &Codec{
		signer:        opts.Signer,
		keys:          opts.Keys,
		issuer:        opts.Issuer,
		audience:      opts.Audience,
		checkIssuer:   !opts.SkipIssuerCheck,
		checkAudience: !opts.SkipAudienceCheck,
		subjectType:   opts.SubjectClaimType,
		roleType:      opts.RoleClaimType,
		now:           opts.Now,
	}
	if opts.Secret != "" {
		c.secret = []byte(opts.Secret)
	}
	if c.subjectType == "" {
		c.subjectType = ClaimSubject
	}
	if c.roleType == "" {
		c.roleType = ClaimRole
	}
	if c.now == nil {
		c.now = time.Now
	}

	if c.signer != nil {
		if err := c.signer.Validate(); err != nil {
			return nil, err
		}
		if c.keys == nil {
			c.keys = NewKeySet()
		}
		if _, err := c.keys.Get(c.signer.KID()); err != nil {
			if err := c.keys.AddSigner(c.signer); err != nil {
				return nil, err
			}
		}
	}

	return c, nil
}

// Alg is the algorithm used by Encode.
func (c *Codec) Alg() string {
	if c.signer != nil {
		return c.signer.Alg()
	}
	return jwt.SigningMethodHS256.Alg()
}

// Keys returns the public key set, or nil when only HS256 is configured.
func (c *Codec) Keys() *KeySet { return c.keys }

func (c *Codec) SubjectClaimType() string { return c.subjectType }
func (c *Codec) RoleClaimType() string    { return c.roleType }

// Encode signs claims together with iss, aud, exp, iat and nbf. A claim type
// that appears more than once is written as a JSON array.
func (c *Codec) Encode(claims []Claim, issuer, audience string, expiresAt time.Time) (string, error) {
	if c.signer == nil && c.secret == nil {
		return "", ErrVerifyOnly
	}
	if expiresAt.IsZero() {
		return "", fmt.Errorf("%w: expiry is required", ErrInvalidClaim)
	}

	mc := jwt.MapClaims{}
	for _, cl := range claims {
		if cl.Type == "" {
			return "", fmt.Errorf("%w: empty claim type", ErrInvalidClaim)
		}
		if IsRegistered(cl.Type) {
			return "", fmt.Errorf("%w: %q is reserved", ErrInvalidClaim, cl.Type)
		}
		switch v := mc[cl.Type].(type) {
		case nil:
			mc[cl.Type] = cl.Value
		case string:
			mc[cl.Type] = []any{v, cl.Value}
		case []any:
			mc[cl.Type] = append(v, cl.Value)
		}
	}

	now := c.now().UTC()
	if issuer != "" {
		mc["iss"] = issuer
	}
	if audience != "" {
		mc["aud"] = audience
	}
	mc["exp"] = expiresAt.Unix()
	mc["iat"] = now.Unix()
	mc["nbf"] = now.Unix()

	if c.signer != nil {
		return c.signer.Sign(mc)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(c.secret)
}

// Issue encodes claims with the codec's own issuer and audience.
func (c *Codec) Issue(claims []Claim, ttl time.Duration) (string, error) {
	return c.Encode(claims, c.issuer, c.audience, c.now().Add(ttl))
}

// Verify is Decode with expiry enforced.
func (c *Codec) Verify(token string) (*Principal, error) {
	return c.Decode(token, DecodeOptions{ValidateExpiry: true})
}

// Decode verifies the signature and registered claims of token and returns
// the principal it carries.
func (c *Codec) Decode(token string, opts DecodeOptions) (*Principal, error) {
	parser := jwt.NewParser(
		jwt.WithoutClaimsValidation(),
		jwt.WithJSONNumber(),
	)

	parsed, err := parser.ParseWithClaims(token, jwt.MapClaims{}, c.keyFunc)
	if err != nil {
		return nil, mapParseError(err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidClaim
	}
	if typ, present := parsed.Header["typ"]; present && typ != "JWT" {
		return nil, fmt.Errorf("%w: unsupported typ %v", ErrMalformed, typ)
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing or invalid exp", ErrInvalidClaim)
	}
	nbf, err := mc.GetNotBefore()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid nbf", ErrInvalidClaim)
	}
	iat, err := mc.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid iat", ErrInvalidClaim)
	}
	iss, err := mc.GetIssuer()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid iss", ErrInvalidClaim)
	}
	aud, err := mc.GetAudience()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid aud", ErrInvalidClaim)
	}

	p := &Principal{
		Claims:      flattenClaims(mc),
		Issuer:      iss,
		Audience:    []string(aud),
		ExpiresAt:   exp.Time.UTC(),
		subjectType: c.subjectType,
		roleType:    c.roleType,
	}
	if iat != nil {
		p.IssuedAt = iat.Time.UTC()
	}

	if c.checkIssuer {
		if err := p.ValidateIssuer(c.issuer); err != nil {
			return nil, err
		}
	}
	if c.checkAudience {
		if err := p.ValidateAudience(c.audience); err != nil {
			return nil, err
		}
	}

	// A token is still valid at exactly exp. Store entries are the other
	// way round and are gone at their expiry.
	if opts.ValidateExpiry {
		now := c.now()
		if now.After(exp.Time) {
			return nil, ErrExpired
		}
		if nbf != nil && now.Before(nbf.Time) {
			return nil, ErrNotYetValid
		}
	}

	return p, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	switch t.Method.Alg() {
	case jwt.SigningMethodHS256.Alg():
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || c.secret == nil {
			return nil, ErrAlgMismatch
		}
		return c.secret, nil

	case jwt.SigningMethodRS256.Alg():
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok || c.keys == nil {
			return nil, ErrAlgMismatch
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}
		pub, err := c.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, ErrAlgMismatch
		}
		return rsaPub, nil

	default:
		return nil, ErrAlgMismatch
	}
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, ErrUnknownKID):
		return ErrUnknownKID
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}

// flattenClaims converts a payload into claims sorted by type. Values of an
// array claim keep their order.
func flattenClaims(mc jwt.MapClaims) []Claim {
	types := make([]string, 0, len(mc))
	for k := range mc {
		if IsRegistered(k) {
			continue
		}
		types = append(types, k)
	}
	sort.Strings(types)

	out := make([]Claim, 0, len(types))
	for _, k := range types {
		switch v := mc[k].(type) {
		case []any:
			for _, item := range v {
				out = append(out, Claim{Type: k, Value: stringify(item)})
			}
		default:
			out = append(out, Claim{Type: k, Value: stringify(v)})
		}
	}
	return out
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

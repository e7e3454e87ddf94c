package jwtx

import (
	"slices"
	"time"
)

// Default token lifetimes. Both can be overridden through configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 3 * time.Hour

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 15 * 24 * time.Hour
)

// Well-known claim types.
const (
	ClaimSubject        = "sub"
	ClaimRole           = "role"
	ClaimRefreshTokenID = "refresh_token_id"
)

// registeredClaims are written by the codec itself and never surface as
// principal claims. Callers cannot supply them through Encode.
var registeredClaims = map[string]struct{}{
	"iss": {},
	"aud": {},
	"exp": {},
	"nbf": {},
	"iat": {},
}

// IsRegistered reports whether a claim type is owned by the codec.
func IsRegistered(claimType string) bool {
	_, ok := registeredClaims[claimType]
	return ok
}

// Claim is a typed fact about the subject embedded in a token.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Principal is the verified identity recovered from a token.
type Principal struct {
	Claims    []Claim
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time

	subjectType string
	roleType    string
}

// Subject returns the value of the subject claim, or "" if absent.
func (p *Principal) Subject() string {
	if p == nil {
		return ""
	}
	v, _ := p.FindFirst(p.subjectClaim())
	return v
}

// Roles returns every role claim value in token order.
func (p *Principal) Roles() []string {
	if p == nil {
		return nil
	}
	return p.FindAll(p.roleClaim())
}

// IsInRole reports whether the principal carries the given role.
func (p *Principal) IsInRole(role string) bool {
	return slices.Contains(p.Roles(), role)
}

// IsAuthenticated is true for any principal with a subject.
func (p *Principal) IsAuthenticated() bool {
	return p.Subject() != ""
}

// FindFirst returns the first value of the given claim type.
func (p *Principal) FindFirst(claimType string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, c := range p.Claims {
		if c.Type == claimType {
			return c.Value, true
		}
	}
	return "", false
}

// FindAll returns all values of the given claim type.
func (p *Principal) FindAll(claimType string) []string {
	if p == nil {
		return nil
	}
	var out []string
	for _, c := range p.Claims {
		if c.Type == claimType {
			out = append(out, c.Value)
		}
	}
	return out
}

// SubjectClaimType is the claim type this principal treats as its subject.
func (p *Principal) SubjectClaimType() string { return p.subjectClaim() }

// RoleClaimType is the claim type this principal treats as a role.
func (p *Principal) RoleClaimType() string { return p.roleClaim() }

func (p *Principal) subjectClaim() string {
	if p.subjectType == "" {
		return ClaimSubject
	}
	return p.subjectType
}

func (p *Principal) roleClaim() string {
	if p.roleType == "" {
		return ClaimRole
	}
	return p.roleType
}

// NewPrincipal builds a principal outside the codec, mainly for tests and
// validators that synthesise identities.
func NewPrincipal(subject string, roles ...string) *Principal {
	p := &Principal{}
	if subject != "" {
		p.Claims = append(p.Claims, Claim{Type: ClaimSubject, Value: subject})
	}
	for _, r := range roles {
		p.Claims = append(p.Claims, Claim{Type: ClaimRole, Value: r})
	}
	return p
}

// ValidateIssuer checks the issuer matches the expected value.
func (p *Principal) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if p.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks that at least one expected audience is present.
func (p *Principal) ValidateAudience(expected ...string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if want != "" && slices.Contains(p.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

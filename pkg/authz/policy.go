// Package authz resolves authorization policies for endpoints and evaluates
// them against a verified principal.
//
// Two strategies are provided. PermissionPolicyProvider treats a policy name
// as a permission string; RoutePolicyProvider keys policies by route
// template. Either way the outcome is decided by a caller-supplied validator
// obtained fresh for every evaluation.
package authz

import (
	"context"
	"slices"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// Requirement is one condition of a policy. Implementations are pointer
// types so a Context can track each one by identity.
type Requirement interface {
	requirement()
}

// PermissionRequirement is satisfied when the permission validator grants
// Permission to the principal.
type PermissionRequirement struct {
	Permission string
}

// RouteRequirement is satisfied when the route validator lets the principal
// access Route. Route is always lower-cased.
type RouteRequirement struct {
	Route string
}

// AssertionRequirement is satisfied when Assert returns true. The evaluator
// handles these itself.
type AssertionRequirement struct {
	Name   string
	Assert func(ctx context.Context, p *jwtx.Principal) bool
}

func (*PermissionRequirement) requirement() {}
func (*RouteRequirement) requirement()      {}
func (*AssertionRequirement) requirement()  {}

// Policy is an immutable rule: optionally require an authenticated
// principal, plus zero or more requirements that must all succeed.
type Policy struct {
	requireAuth  bool
	requirements []Requirement
}

// NewPolicy builds a policy. The requirement slice is copied.
func NewPolicy(requireAuthenticated bool, reqs ...Requirement) *Policy {
	return &Policy{
		requireAuth:  requireAuthenticated,
		requirements: slices.Clone(reqs),
	}
}

// RequireAuthenticated is NewPolicy(true, reqs...).
func RequireAuthenticated(reqs ...Requirement) *Policy {
	return NewPolicy(true, reqs...)
}

func (p *Policy) RequiresAuthentication() bool { return p.requireAuth }

// Requirements returns a copy of the policy's requirements.
func (p *Policy) Requirements() []Requirement { return slices.Clone(p.requirements) }

// Equivalent reports whether two policies enforce the same thing. Assertion
// requirements compare by name.
func (p *Policy) Equivalent(o *Policy) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.requireAuth != o.requireAuth || len(p.requirements) != len(o.requirements) {
		return false
	}
	for i, r := range p.requirements {
		if !sameRequirement(r, o.requirements[i]) {
			return false
		}
	}
	return true
}

func sameRequirement(a, b Requirement) bool {
	switch x := a.(type) {
	case *PermissionRequirement:
		y, ok := b.(*PermissionRequirement)
		return ok && x.Permission == y.Permission
	case *RouteRequirement:
		y, ok := b.(*RouteRequirement)
		return ok && x.Route == y.Route
	case *AssertionRequirement:
		y, ok := b.(*AssertionRequirement)
		return ok && x.Name == y.Name
	}
	return false
}

// AllowAll admits every caller, authenticated or not.
var AllowAll = NewPolicy(false, &AssertionRequirement{
	Name:   "allow-all",
	Assert: func(context.Context, *jwtx.Principal) bool { return true },
})

// Endpoint describes the route a request matched. It is passed explicitly
// to providers in place of ambient request state.
type Endpoint struct {
	// Route is the route template, e.g. "GET /v1/userinfo".
	Route string

	// RequireAuthorization marks endpoints that must be authorized. Unmarked
	// endpoints get the fallback policy.
	RequireAuthorization bool

	// Policy optionally names a specific policy: a permission for the
	// permission provider, a route for the route provider.
	Policy string
}

// PolicyProvider is implemented by both strategies.
type PolicyProvider interface {
	GetPolicy(name string) *Policy
	GetDefaultPolicy(current *Endpoint) *Policy
	GetFallbackPolicy() *Policy
}

// ResolvePolicy picks the policy for ep. A nil result means nothing is
// enforced.
func ResolvePolicy(p PolicyProvider, ep *Endpoint) *Policy {
	switch {
	case ep == nil || (!ep.RequireAuthorization && ep.Policy == ""):
		return p.GetFallbackPolicy()
	case ep.Policy != "":
		return p.GetPolicy(ep.Policy)
	default:
		return p.GetDefaultPolicy(ep)
	}
}

package authz

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// Wildcard grants every permission or route.
const Wildcard = "*"

// RoleValidator grants permissions and routes to roles from static
// configuration. It implements both PermissionValidator and RouteValidator
// and never returns an error.
//
// Route grants are compared lower-cased. A grant ending in "*" matches any
// route with that prefix.
type RoleValidator struct {
	permissions map[string][]string
	routes      map[string][]string
}

var (
	_ PermissionValidator = (*RoleValidator)(nil)
	_ RouteValidator      = (*RoleValidator)(nil)
)

// NewRoleValidator takes role -> permissions and role -> route grants.
// Either map may be nil.
func NewRoleValidator(permissions, routes map[string][]string) *RoleValidator {
	lowered := make(map[string][]string, len(routes))
	for role, grants := range routes {
		for _, g := range grants {
			lowered[role] = append(lowered[role], strings.ToLower(g))
		}
	}
	return &RoleValidator{permissions: permissions, routes: lowered}
}

func (v *RoleValidator) HasPermission(_ context.Context, p *jwtx.Principal, permission string) (bool, error) {
	for _, role := range p.Roles() {
		for _, g := range v.permissions[role] {
			if g == Wildcard || g == permission {
				return true, nil
			}
		}
	}
	return false, nil
}

func (v *RoleValidator) CanAccess(_ context.Context, p *jwtx.Principal, route string) (bool, error) {
	route = strings.ToLower(route)
	for _, role := range p.Roles() {
		for _, g := range v.routes[role] {
			if matchRoute(g, route) {
				return true, nil
			}
		}
	}
	return false, nil
}

func matchRoute(grant, route string) bool {
	if prefix, ok := strings.CutSuffix(grant, Wildcard); ok {
		return strings.HasPrefix(route, prefix)
	}
	return grant == route
}

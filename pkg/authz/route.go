package authz

import "strings"

// RoutePolicyProvider keys policies by lower-cased route template.
type RoutePolicyProvider struct {
	cache *PolicyCache
}

var _ PolicyProvider = (*RoutePolicyProvider)(nil)

func NewRoutePolicyProvider(cache *PolicyCache) *RoutePolicyProvider {
	if cache == nil {
		cache = NewPolicyCache()
	}
	return &RoutePolicyProvider{cache: cache}
}

func routePolicy(route string) *Policy {
	return RequireAuthenticated(&RouteRequirement{Route: route})
}

// GetPolicy returns the policy for an explicit route. An empty route allows
// everyone; any other route always carries a route requirement.
func (p *RoutePolicyProvider) GetPolicy(route string) *Policy {
	if route == "" {
		return AllowAll
	}
	key := strings.ToLower(route)
	if policy, ok := p.cache.Get(key); ok {
		return policy
	}
	return p.cache.LoadOrStore(key, routePolicy(key))
}

// GetEndpointPolicy returns the policy for a matched endpoint. Only
// endpoints marked RequireAuthorization get a route requirement; the
// decision is cached either way.
func (p *RoutePolicyProvider) GetEndpointPolicy(ep *Endpoint) *Policy {
	if ep == nil || ep.Route == "" {
		return AllowAll
	}
	key := strings.ToLower(ep.Route)
	if policy, ok := p.cache.Get(key); ok {
		return policy
	}

	policy := AllowAll
	if ep.RequireAuthorization {
		policy = routePolicy(key)
	}
	return p.cache.LoadOrStore(key, policy)
}

// GetDefaultPolicy resolves the policy of the current endpoint.
func (p *RoutePolicyProvider) GetDefaultPolicy(current *Endpoint) *Policy {
	return p.GetEndpointPolicy(current)
}

// GetFallbackPolicy always allows.
func (p *RoutePolicyProvider) GetFallbackPolicy() *Policy { return AllowAll }

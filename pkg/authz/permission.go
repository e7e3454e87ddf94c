package authz

// PermissionPolicyProvider resolves a policy name as a permission. Names
// without a registered policy get one synthesised on first use.
type PermissionPolicyProvider struct {
	cache *PolicyCache
}

var _ PolicyProvider = (*PermissionPolicyProvider)(nil)

// NewPermissionPolicyProvider uses cache for both static and synthesised
// policies. A nil cache gets a fresh one.
func NewPermissionPolicyProvider(cache *PolicyCache) *PermissionPolicyProvider {
	if cache == nil {
		cache = NewPolicyCache()
	}
	return &PermissionPolicyProvider{cache: cache}
}

// AddPolicy registers a static policy under name.
func (p *PermissionPolicyProvider) AddPolicy(name string, policy *Policy) {
	p.cache.Store(name, policy)
}

// GetPolicy returns the registered policy for name or synthesises
// "authenticated + permission(name)". An empty name yields the default
// policy.
func (p *PermissionPolicyProvider) GetPolicy(name string) *Policy {
	if name == "" {
		return p.GetDefaultPolicy(nil)
	}
	if policy, ok := p.cache.Get(name); ok {
		return policy
	}
	return p.cache.LoadOrStore(name, RequireAuthenticated(&PermissionRequirement{Permission: name}))
}

var requireAuthenticatedUser = RequireAuthenticated()

// GetDefaultPolicy requires an authenticated principal and nothing more.
func (p *PermissionPolicyProvider) GetDefaultPolicy(*Endpoint) *Policy {
	return requireAuthenticatedUser
}

// GetFallbackPolicy is nil: unmarked endpoints are not checked.
func (p *PermissionPolicyProvider) GetFallbackPolicy() *Policy { return nil }

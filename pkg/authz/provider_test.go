package authz_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokenauth/pkg/authz"
)

func TestPermissionProviderSynthesises(t *testing.T) {
	cache := authz.NewPolicyCache()
	p := authz.NewPermissionPolicyProvider(cache)

	first := p.GetPolicy("orders.read")
	second := p.GetPolicy("orders.read")

	require.Same(t, first, second, "second lookup hits the cache")
	require.True(t, first.RequiresAuthentication())
	require.Equal(t, []authz.Requirement{&authz.PermissionRequirement{Permission: "orders.read"}}, first.Requirements())
	require.Equal(t, 1, cache.Len())
}

func TestPermissionProviderStaticPolicyWins(t *testing.T) {
	p := authz.NewPermissionPolicyProvider(nil)
	static := authz.RequireAuthenticated(&authz.PermissionRequirement{Permission: "admin"})
	p.AddPolicy("orders.read", static)

	require.Same(t, static, p.GetPolicy("orders.read"))
}

func TestPermissionProviderDefaults(t *testing.T) {
	p := authz.NewPermissionPolicyProvider(nil)

	def := p.GetDefaultPolicy(nil)
	require.True(t, def.RequiresAuthentication())
	require.Empty(t, def.Requirements())

	require.Nil(t, p.GetFallbackPolicy())
	require.True(t, p.GetPolicy("").Equivalent(def))
}

func TestPermissionProviderConcurrentFirstAccess(t *testing.T) {
	cache := authz.NewPolicyCache()
	p := authz.NewPermissionPolicyProvider(cache)

	const workers = 32
	got := make([]*authz.Policy, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got[i] = p.GetPolicy("orders.read")
		}()
	}
	close(start)
	wg.Wait()

	for _, policy := range got {
		require.Same(t, got[0], policy)
	}
	require.Equal(t, 1, cache.Len())
}

func TestRouteProviderGetPolicy(t *testing.T) {
	cache := authz.NewPolicyCache()
	p := authz.NewRoutePolicyProvider(cache)

	require.Same(t, authz.AllowAll, p.GetPolicy(""))

	policy := p.GetPolicy("GET /Orders/{id}")
	require.True(t, policy.RequiresAuthentication())
	require.Equal(t, []authz.Requirement{&authz.RouteRequirement{Route: "get /orders/{id}"}}, policy.Requirements())

	// Keys are case-insensitive
	require.Same(t, policy, p.GetPolicy("get /orders/{ID}"))
	require.Equal(t, 1, cache.Len())
}

func TestRouteProviderEndpointPolicy(t *testing.T) {
	tests := []struct {
		name      string
		endpoint  *authz.Endpoint
		allowAll  bool
		wantRoute string
	}{
		{"nil endpoint", nil, true, ""},
		{"unmarked", &authz.Endpoint{Route: "GET /public"}, true, ""},
		{"marked", &authz.Endpoint{Route: "GET /Private", RequireAuthorization: true}, false, "get /private"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := authz.NewRoutePolicyProvider(nil)
			policy := p.GetEndpointPolicy(tt.endpoint)
			if tt.allowAll {
				require.Same(t, authz.AllowAll, policy)
				return
			}
			require.Equal(t, []authz.Requirement{&authz.RouteRequirement{Route: tt.wantRoute}}, policy.Requirements())
			require.Same(t, policy, p.GetDefaultPolicy(tt.endpoint))
		})
	}
}

func TestRouteProviderCachesUnmarkedDecision(t *testing.T) {
	cache := authz.NewPolicyCache()
	p := authz.NewRoutePolicyProvider(cache)

	require.Same(t, authz.AllowAll, p.GetEndpointPolicy(&authz.Endpoint{Route: "GET /x"}))
	require.Equal(t, 1, cache.Len())

	policy, ok := cache.Get("get /x")
	require.True(t, ok)
	require.Same(t, authz.AllowAll, policy)
}

func TestRouteProviderFallback(t *testing.T) {
	require.Same(t, authz.AllowAll, authz.NewRoutePolicyProvider(nil).GetFallbackPolicy())
}

func TestResolvePolicy(t *testing.T) {
	perm := authz.NewPermissionPolicyProvider(nil)
	route := authz.NewRoutePolicyProvider(nil)

	require.Nil(t, authz.ResolvePolicy(perm, nil))
	require.Nil(t, authz.ResolvePolicy(perm, &authz.Endpoint{Route: "GET /a"}))
	require.Same(t, perm.GetDefaultPolicy(nil), authz.ResolvePolicy(perm, &authz.Endpoint{Route: "GET /a", RequireAuthorization: true}))
	require.Same(t, perm.GetPolicy("p"), authz.ResolvePolicy(perm, &authz.Endpoint{Route: "GET /a", Policy: "p"}))

	require.Same(t, authz.AllowAll, authz.ResolvePolicy(route, &authz.Endpoint{Route: "GET /a"}))
	require.Equal(t,
		[]authz.Requirement{&authz.RouteRequirement{Route: "get /b"}},
		authz.ResolvePolicy(route, &authz.Endpoint{Route: "GET /b", RequireAuthorization: true}).Requirements(),
	)
}

func TestPolicyEquivalent(t *testing.T) {
	a := authz.RequireAuthenticated(&authz.PermissionRequirement{Permission: "x"})
	b := authz.RequireAuthenticated(&authz.PermissionRequirement{Permission: "x"})
	c := authz.RequireAuthenticated(&authz.PermissionRequirement{Permission: "y"})
	d := authz.NewPolicy(false, &authz.PermissionRequirement{Permission: "x"})
	e := authz.RequireAuthenticated(&authz.RouteRequirement{Route: "x"})

	require.True(t, a.Equivalent(b))
	require.False(t, a.Equivalent(c))
	require.False(t, a.Equivalent(d))
	require.False(t, a.Equivalent(e))
	require.False(t, a.Equivalent(nil))
}

func TestPolicyIsImmutable(t *testing.T) {
	reqs := []authz.Requirement{&authz.PermissionRequirement{Permission: "x"}}
	p := authz.RequireAuthenticated(reqs...)

	reqs[0] = &authz.PermissionRequirement{Permission: "changed"}
	got := p.Requirements()
	got[0] = nil

	require.Equal(t, []authz.Requirement{&authz.PermissionRequirement{Permission: "x"}}, p.Requirements())
}

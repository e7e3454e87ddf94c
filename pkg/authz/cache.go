package authz

import "sync"

// PolicyCache maps names to policies for the life of the process. Entries
// are never evicted.
type PolicyCache struct {
	mu       sync.RWMutex
	policies map[string]*Policy
}

func NewPolicyCache() *PolicyCache {
	return &PolicyCache{policies: make(map[string]*Policy)}
}

func (c *PolicyCache) Get(name string) (*Policy, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.policies[name]
	return p, ok
}

// LoadOrStore inserts p if name is absent and returns whichever policy is
// cached afterwards. Concurrent first callers all receive the same winner.
func (c *PolicyCache) LoadOrStore(name string, p *Policy) *Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.policies[name]; ok {
		return existing
	}
	c.policies[name] = p
	return p
}

// Store sets name to p, replacing any cached entry.
func (c *PolicyCache) Store(name string, p *Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policies[name] = p
}

func (c *PolicyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.policies)
}

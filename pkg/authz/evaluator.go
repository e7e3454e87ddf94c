package authz

import (
	"context"
	"slices"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// ReasonUnauthenticated is recorded when a policy needs a principal and
// none was presented.
const ReasonUnauthenticated = "Authentication required."

// Context is the state of one policy evaluation.
type Context struct {
	Principal *jwtx.Principal

	requirements []Requirement
	succeeded    map[Requirement]struct{}
	failed       bool
	reasons      []string
}

func NewContext(p *jwtx.Principal, reqs []Requirement) *Context {
	return &Context{
		Principal:    p,
		requirements: reqs,
		succeeded:    make(map[Requirement]struct{}, len(reqs)),
	}
}

// Pending returns the requirements not yet marked as succeeded.
func (c *Context) Pending() []Requirement {
	out := make([]Requirement, 0, len(c.requirements))
	for _, r := range c.requirements {
		if _, ok := c.succeeded[r]; !ok {
			out = append(out, r)
		}
	}
	return out
}

func (c *Context) Succeed(r Requirement) { c.succeeded[r] = struct{}{} }

// Fail marks the whole evaluation as failed. A failed context never
// succeeds, whatever else succeeds afterwards.
func (c *Context) Fail(reason string) {
	c.failed = true
	if reason != "" {
		c.reasons = append(c.reasons, reason)
	}
}

func (c *Context) HasFailed() bool { return c.failed }

func (c *Context) HasSucceeded() bool {
	return !c.failed && len(c.Pending()) == 0
}

func (c *Context) Reasons() []string { return slices.Clone(c.reasons) }

// Result is the outcome of Evaluator.Authorize.
type Result struct {
	Succeeded bool

	// Challenged is set when the failure is due to a missing or
	// unauthenticated principal. Callers answer 401 rather than 403.
	Challenged bool

	Reasons []string
}

// Evaluator runs a policy through its handlers.
type Evaluator struct {
	handlers []Handler
}

func NewEvaluator(handlers ...Handler) *Evaluator {
	return &Evaluator{handlers: handlers}
}

// Authorize evaluates policy for p. A nil policy succeeds. Any handler
// error stops evaluation and is returned with a failed result.
func (e *Evaluator) Authorize(ctx context.Context, p *jwtx.Principal, policy *Policy) (Result, error) {
	if policy == nil {
		return Result{Succeeded: true}, nil
	}

	authenticated := p.IsAuthenticated()
	if policy.RequiresAuthentication() && !authenticated {
		return Result{Challenged: true, Reasons: []string{ReasonUnauthenticated}}, nil
	}

	ac := NewContext(p, policy.Requirements())

	for _, r := range ac.Pending() {
		if a, ok := r.(*AssertionRequirement); ok && a.Assert != nil && a.Assert(ctx, p) {
			ac.Succeed(a)
		}
	}

	for _, h := range e.handlers {
		if err := h.Handle(ctx, ac); err != nil {
			return Result{Challenged: !authenticated, Reasons: ac.Reasons()}, err
		}
	}

	if ac.HasSucceeded() {
		return Result{Succeeded: true}, nil
	}
	return Result{Challenged: !authenticated, Reasons: ac.Reasons()}, nil
}

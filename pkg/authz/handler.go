package authz

import (
	"context"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

// ReasonDenied is recorded when a validator answers false.
const ReasonDenied = "Permission denied."

// ReasonValidatorError is recorded when a validator fails.
const ReasonValidatorError = "Authorization check failed."

// PermissionValidator decides whether a principal holds a permission.
type PermissionValidator interface {
	HasPermission(ctx context.Context, p *jwtx.Principal, permission string) (bool, error)
}

// RouteValidator decides whether a principal may access a route.
type RouteValidator interface {
	CanAccess(ctx context.Context, p *jwtx.Principal, route string) (bool, error)
}

// PermissionValidatorFunc adapts a function to PermissionValidator.
type PermissionValidatorFunc func(ctx context.Context, p *jwtx.Principal, permission string) (bool, error)

func (f PermissionValidatorFunc) HasPermission(ctx context.Context, p *jwtx.Principal, permission string) (bool, error) {
	return f(ctx, p, permission)
}

// RouteValidatorFunc adapts a function to RouteValidator.
type RouteValidatorFunc func(ctx context.Context, p *jwtx.Principal, route string) (bool, error)

func (f RouteValidatorFunc) CanAccess(ctx context.Context, p *jwtx.Principal, route string) (bool, error) {
	return f(ctx, p, route)
}

// Validator factories are called once per evaluation, so validators may
// carry request-scoped state such as the current tenant.
type (
	PermissionValidatorFactory func(ctx context.Context) PermissionValidator
	RouteValidatorFactory      func(ctx context.Context) RouteValidator
)

// Handler evaluates the requirements of an authorization context it knows
// how to decide. A returned error means the check could not be made; the
// handler must also have failed the context.
type Handler interface {
	Handle(ctx context.Context, ac *Context) error
}

// PermissionHandler decides PermissionRequirements.
type PermissionHandler struct {
	Validators PermissionValidatorFactory
}

func (h *PermissionHandler) Handle(ctx context.Context, ac *Context) error {
	var v PermissionValidator
	for _, r := range ac.Pending() {
		req, ok := r.(*PermissionRequirement)
		if !ok {
			continue
		}
		if v == nil {
			v = h.Validators(ctx)
		}
		granted, err := v.HasPermission(ctx, ac.Principal, req.Permission)
		if err != nil {
			ac.Fail(ReasonValidatorError)
			return err
		}
		if granted {
			ac.Succeed(req)
		} else {
			ac.Fail(ReasonDenied)
		}
	}
	return nil
}

// RouteHandler decides RouteRequirements.
type RouteHandler struct {
	Validators RouteValidatorFactory
}

func (h *RouteHandler) Handle(ctx context.Context, ac *Context) error {
	var v RouteValidator
	for _, r := range ac.Pending() {
		req, ok := r.(*RouteRequirement)
		if !ok {
			continue
		}
		if v == nil {
			v = h.Validators(ctx)
		}
		granted, err := v.CanAccess(ctx, ac.Principal, req.Route)
		if err != nil {
			ac.Fail(ReasonValidatorError)
			return err
		}
		if granted {
			ac.Succeed(req)
		} else {
			ac.Fail(ReasonDenied)
		}
	}
	return nil
}

package httpx

import (
	"context"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID    ctxKey = "user_id"
	CtxKeyPrincipal ctxKey = "principal"
	CtxKeyToken     ctxKey = "access_token"
	ctxKeyAuthnErr  ctxKey = "authn_error"
)

// PrincipalFromContext returns the authenticated principal, or nil for an
// anonymous request.
func PrincipalFromContext(ctx context.Context) *jwtx.Principal {
	p, _ := ctx.Value(CtxKeyPrincipal).(*jwtx.Principal)
	return p
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyUserID).(string)
	return id
}

// TokenFromContext returns the raw bearer token that authenticated the
// request.
func TokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(CtxKeyToken).(string)
	return t
}

// AuthnErrorFromContext reports why a presented bearer token was rejected.
// It is nil when no token was sent or the token was accepted.
func AuthnErrorFromContext(ctx context.Context) error {
	err, _ := ctx.Value(ctxKeyAuthnErr).(error)
	return err
}

func contextWithAuthnError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, ctxKeyAuthnErr, err)
}

func contextWithPrincipal(ctx context.Context, p *jwtx.Principal, raw string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, p.Subject())
	ctx = context.WithValue(ctx, CtxKeyPrincipal, p)
	ctx = context.WithValue(ctx, CtxKeyToken, raw)
	return ctx
}

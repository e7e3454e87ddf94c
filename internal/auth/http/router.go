package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/authz"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"

	_ "github.com/aussiebroadwan/tokenauth/api/auth" // Swagger docs
)

// Permissions checked by the built-in endpoints in permission mode.
const (
	PermissionProfileRead = "profile:read"
)

// Config carries the dependencies of the router.
type Config struct {
	Codec        *jwtx.Codec
	Store        store.Store
	TokenService *service.TokenService

	// Policies and Evaluator decide access to protected endpoints.
	Policies  authz.PolicyProvider
	Evaluator *authz.Evaluator

	// NamedPolicies makes protected endpoints name a permission policy.
	// When false each endpoint is authorized by its route pattern.
	NamedPolicies bool

	// IssuerKeyHash is the argon2id hash of the trusted caller key.
	IssuerKeyHash string
	Hasher        cryptox.Hasher

	// IssueLimit limits the trusted-caller endpoints per IP and key.
	// Zero means httpx.PublicLimit.
	IssueLimit httpx.RateLimitConfig

	BuildVersion string
	Logger       *slog.Logger
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cfg       Config
	startTime time.Time
	validate  *validator.Validate
	issuerKey *issuerKeyGuard
}

func NewRouter(cfg Config) *Router {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if !cfg.IssueLimit.Valid() {
		cfg.IssueLimit = httpx.PublicLimit
	}

	r := &Router{
		Mux:       http.NewServeMux(),
		cfg:       cfg,
		startTime: time.Now(),
		validate: newValidator(
			cfg.Codec.SubjectClaimType(),
			cfg.Codec.RoleClaimType(),
			jwtx.ClaimRefreshTokenID,
		),
		issuerKey: newIssuerKeyGuard(cfg.Hasher, cfg.IssuerKeyHash),
	}

	// Logging runs first so every later middleware logs with the request id.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(cfg.Logger),
		httpx.AuthnMiddleware(cfg.Codec),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerTokens()
	r.registerTemporaryTokens()
	r.registerIdentity()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			tokenauth API
//	@version		0.1.0
//	@description	Issues JWT access tokens with single-use refresh tokens, and single-use temporary tokens.
//	@description
//	@description	Every response except health and JWKS is wrapped in {"status", "data"} on success
//	@description	or {"status", "code", "message"} on failure.
//
//	@BasePath					/
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// endpoint describes a protected route to the policy provider.
func (r *Router) endpoint(route, permission string) *authz.Endpoint {
	ep := &authz.Endpoint{Route: route, RequireAuthorization: true}
	if r.cfg.NamedPolicies {
		ep.Policy = permission
	}
	return ep
}

func (r *Router) authorize(route, permission string) httpx.Middleware {
	return httpx.Authorize(r.endpoint(route, permission), r.cfg.Policies, r.cfg.Evaluator)
}

func (r *Router) registerTokens() {
	h := &TokenHandler{TokenService: r.cfg.TokenService, router: r}

	// POST /token - trusted callers only, limited per IP + issuer key
	r.Mux.Handle("POST /v1/token",
		httpx.Chain(http.HandlerFunc(h.HandleIssue),
			httpx.RateLimitByIPAndHeader(r.cfg.IssueLimit, authsdk.IssuerKeyHeader),
			r.issuerKey.Middleware,
		),
	)

	// POST /token/refresh - moderate limit by IP
	r.Mux.Handle("POST /v1/token/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /token/revoke - authenticated, limited by user
	r.Mux.Handle("POST /v1/token/revoke",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			httpx.RequireAuthenticated,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTemporaryTokens() {
	h := &TemporaryTokenHandler{TokenService: r.cfg.TokenService, router: r}

	r.Mux.Handle("POST /v1/temporary-tokens",
		httpx.Chain(http.HandlerFunc(h.HandleIssue),
			httpx.RateLimitByIPAndHeader(r.cfg.IssueLimit, authsdk.IssuerKeyHeader),
			r.issuerKey.Middleware,
		),
	)

	// POST /temporary-tokens/validate - strict limit by IP, the token is a bearer secret
	r.Mux.Handle("POST /v1/temporary-tokens/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerIdentity() {
	const route = "GET /v1/userinfo"
	r.Mux.Handle(route,
		httpx.Chain(http.HandlerFunc(ServeUserInfo),
			r.authorize(route, PermissionProfileRead),
			httpx.RateLimitByUser(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// JWKS only exists for asymmetric signing.
	if keys := r.cfg.Codec.Keys(); keys != nil {
		r.Mux.Handle("GET /.well-known/jwks.json",
			httpx.Chain(JWKSHandler(keys),
				httpx.RateLimitByIP(httpx.PublicLimit),
			),
		)
	}

	// Health check endpoints - public limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.cfg.BuildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.cfg.BuildVersion, r.cfg.Store, r.cfg.Codec),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

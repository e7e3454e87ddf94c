package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/aussiebroadwan/tokenauth/internal/auth/http"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tokenauth/pkg/authz"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application owns every long-lived dependency of the service.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *jwtx.Codec

	tokenService        *service.TokenService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tokenauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
		}),
	}

	if err := app.initStore(ctx); err != nil {
		return nil, err
	}

	codec, err := newCodec(cfg.JWT, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("init token codec: %w", err)
	}
	app.codec = codec

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed HTTP handler, mostly for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("tokenauth starting",
		"addr", app.cfg.HTTP.Addr,
		"alg", app.codec.Alg(),
		"store", app.cfg.Store.Driver,
		"authorization", app.cfg.Authorization.Mode,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Close releases the store of an application whose Run was never called.
func (app *Application) Close() error { return app.db.Close() }

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tokenauth...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.HTTP.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("tokenauth stopped")
	return nil
}

func openStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewStore(nil), nil
	case "sqlite":
		return sqlite.NewStore(cfg.DSN, nil)
	case "redis":
		return redis.NewStore(cfg.DSN, cfg.KeyPrefix)
	case "postgres":
		return postgres.NewStore(ctx, cfg.DSN, nil)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// initStore opens the configured driver and applies migrations
func (app *Application) initStore(ctx context.Context) error {
	db, err := openStore(ctx, app.cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", app.cfg.Store.Driver, err)
	}

	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply store migrations: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("store unreachable: %w", err)
	}

	app.db = db
	app.logger.Info("store ready", "driver", app.cfg.Store.Driver)
	return nil
}

// newCodec signs RS256 when a key path is configured, HS256 otherwise. The
// key file is created on first start.
func newCodec(cfg JWTConfig, logger *slog.Logger) (*jwtx.Codec, error) {
	opts := jwtx.CodecOptions{
		Secret:            cfg.Secret,
		Issuer:            cfg.Issuer,
		Audience:          cfg.Audience,
		SkipIssuerCheck:   !cfg.ValidateIssuer,
		SkipAudienceCheck: !cfg.ValidateAudience,
		SubjectClaimType:  cfg.SubjectClaimType,
		RoleClaimType:     cfg.RoleClaimType,
	}

	if cfg.RSAKeyPath != "" {
		pemKey, generated, err := cryptox.LoadOrGenerateRSAKey(cfg.RSAKeyPath, cfg.RSABits)
		if err != nil {
			return nil, err
		}
		if generated {
			logger.Warn("generated new RSA signing key", "path", cfg.RSAKeyPath, "bits", cfg.RSABits)
		}

		// The kid must survive restarts so cached JWKS stay valid.
		kid := cryptox.FingerprintToken(string(pemKey))[:16]
		signer, err := jwtx.NewSignerRS256(kid, pemKey)
		if err != nil {
			return nil, err
		}
		opts.Signer = signer
	}

	return jwtx.NewCodec(opts)
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Codec:      app.codec,
		Store:      app.db,
		Issuer:     app.cfg.JWT.Issuer,
		Audience:   app.cfg.JWT.Audience,
		AccessTTL:  app.cfg.JWT.AccessTTL,
		RefreshTTL: app.cfg.JWT.RefreshTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// newAuthorization builds the policy provider for the configured mode and
// an evaluator that can satisfy both permission and route requirements.
func newAuthorization(cfg AuthorizationConfig) (authz.PolicyProvider, *authz.Evaluator) {
	roles := authz.NewRoleValidator(cfg.Permissions, cfg.Routes)

	eval := authz.NewEvaluator(
		&authz.PermissionHandler{
			Validators: func(context.Context) authz.PermissionValidator { return roles },
		},
		&authz.RouteHandler{
			Validators: func(context.Context) authz.RouteValidator { return roles },
		},
	)

	cache := authz.NewPolicyCache()
	if cfg.Mode == "route" {
		return authz.NewRoutePolicyProvider(cache), eval
	}
	return authz.NewPermissionPolicyProvider(cache), eval
}

func (app *Application) initHTTP() {
	policies, eval := newAuthorization(app.cfg.Authorization)

	router := httpapi.NewRouter(httpapi.Config{
		Codec:         app.codec,
		Store:         app.db,
		TokenService:  app.tokenService,
		Policies:      policies,
		Evaluator:     eval,
		NamedPolicies: app.cfg.Authorization.Mode == "permission",
		IssuerKeyHash: app.cfg.Issuer.KeyHash,
		Hasher:        cryptox.Hasher{Pepper: app.cfg.Issuer.Pepper},
		IssueLimit: httpx.RateLimitConfig{
			RequestsPerWindow: app.cfg.Issuer.RateLimit,
			Window:            app.cfg.Issuer.RateWindow,
			Burst:             app.cfg.Issuer.RateLimitBurst,
		},
		BuildVersion: BuildVersion,
		Logger:       app.logger,
	})
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: app.cfg.HTTP.ReadHeaderTimeout,
	}
}

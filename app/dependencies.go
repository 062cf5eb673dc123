package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/upb/backoffice/config"
	"github.com/upb/backoffice/internal/auth"
	"github.com/upb/backoffice/internal/observability"
	"github.com/upb/backoffice/internal/policy"
	"github.com/upb/backoffice/middleware"
	"github.com/upb/backoffice/repositories"
	"github.com/upb/backoffice/repositories/memory"
	"github.com/upb/backoffice/repositories/postgres"
	"github.com/upb/backoffice/services"
	"github.com/upb/backoffice/tokens"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Repository Factory, nil with the memory store
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Accounts repositories.AccountRepository

	// Observability
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	// Auth core
	Hasher         auth.PasswordHasher
	Codec          *tokens.Codec
	Routes         *policy.RoutePolicy
	AccountService *services.AccountService
	TokenService   *services.TokenService
	AuthMiddleware *middleware.AuthMiddleware
}

// Option customizes dependency construction
type Option func(*options)

type options struct {
	now      func() time.Time
	accounts repositories.AccountRepository
}

// WithClock replaces the time source used for token issuance and verification
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithAccountRepository uses accounts instead of the configured store driver
func WithAccountRepository(accounts repositories.AccountRepository) Option {
	return func(o *options) {
		o.accounts = accounts
	}
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Dependencies, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics(cfg)

	if err := deps.initStore(ctx, cfg, o.accounts); err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}

	if err := deps.initAuth(cfg, o.now); err != nil {
		deps.closeStore()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		zap.String("store", cfg.Store.Driver),
		zap.Duration("token_lifetime", cfg.Auth.TokenLifetime))
	return deps, nil
}

func (d *Dependencies) initMetrics(cfg *config.Config) {
	d.Registry = prometheus.NewRegistry()
	if cfg.Observability.MetricsEnabled {
		d.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	d.Metrics = observability.NewMetrics(d.Registry)
}

// initStore opens the configured credential store
func (d *Dependencies) initStore(ctx context.Context, cfg *config.Config, override repositories.AccountRepository) error {
	if override != nil {
		d.Accounts = override
		return nil
	}

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		d.Logger.Warn("using in-memory credential store, accounts are lost on restart")
		d.Accounts = memory.NewAccountRepository()
		return nil

	case config.StoreDriverPostgres:
		factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to create repository factory: %w", err)
		}
		d.RepoFactory = factory

		if err := factory.GetDB().HealthCheck(ctx); err != nil {
			d.closeStore()
			return fmt.Errorf("database ping failed: %w", err)
		}

		d.Accounts = factory.NewRepositories().Accounts
		d.Logger.Info("database connection established",
			zap.String("connection", cfg.Database.LogString()))
		return nil

	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (d *Dependencies) initAuth(cfg *config.Config, now func() time.Time) error {
	if cfg.Auth.SecretGenerated {
		d.Logger.Warn("no AUTH_SIGNING_SECRET configured, using a generated secret; tokens will not survive a restart")
	}

	codec, err := tokens.NewCodec([]byte(cfg.Auth.SigningSecret), tokens.WithClock(now))
	if err != nil {
		return err
	}
	d.Codec = codec

	routes, err := policy.NewRoutePolicy(cfg.Auth.PublicRoutes)
	if err != nil {
		return err
	}
	d.Routes = routes

	d.Hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	accountService, err := services.NewAccountService(d.Accounts, d.Hasher, cfg.Auth.StoreTimeout, d.Metrics, d.Logger)
	if err != nil {
		return err
	}
	d.AccountService = accountService
	d.TokenService = services.NewTokenService(codec, cfg.Auth.TokenLifetime, now)
	d.AuthMiddleware = middleware.NewAuthMiddleware(routes, codec, d.Metrics, d.Logger)

	d.Logger.Info("auth initialized", zap.Strings("public_routes", cfg.Auth.PublicRoutes))
	return nil
}

func (d *Dependencies) closeStore() error {
	if d.RepoFactory == nil {
		return nil
	}
	err := d.RepoFactory.Close()
	d.RepoFactory = nil
	return err
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.closeStore(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}

package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/equihire/equihire-core/config"
	"github.com/equihire/equihire-core/internal/adapters/email"
	"github.com/equihire/equihire-core/internal/adapters/probes"
	redisadapter "github.com/equihire/equihire-core/internal/adapters/redis"
	"github.com/equihire/equihire-core/internal/core"
	"github.com/equihire/equihire-core/internal/data"
	"github.com/equihire/equihire-core/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService // nil when sign-in is unavailable
	Organizations *service.OrganizationService
	Views         *service.ViewService
	Integrations  *service.IntegrationService
	Invitations   *service.InvitationService
	Sessions      *redisadapter.SessionStore
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// Mailer overrides the Resend mailer (tests).
	Mailer core.Mailer
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Organizations *data.OrganizationRepo
	Invitations   *data.InvitationRepo
	Cache         *data.RedisCacheRepo
	Sessions      *redisadapter.SessionStore
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, client redis.UniversalClient) *serviceRepositories {
	repos := &serviceRepositories{
		Organizations: data.NewOrganizationRepo(db),
		Invitations:   data.NewInvitationRepo(db),
	}
	if client != nil {
		repos.Cache = data.NewRedisCacheRepo(client)
		repos.Sessions = redisadapter.NewSessionStoreWithPrefix(client, SessionKeyPrefix)
	}
	return repos
}

// NewServices wires repositories, adapters and services.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.DB == nil {
		return ServiceContainer{}, errors.New("database is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	repos := buildRepositories(deps.DB, deps.RedisClient)

	orgOpts := service.OrganizationServiceOptions{Repo: repos.Organizations, Logger: logger}
	if repos.Cache != nil {
		orgOpts.Cache = service.MembershipCacheOptions{Cache: repos.Cache, TTL: cfg.Cache.OrgTTL}
	}
	orgs := service.NewOrganizationService(orgOpts)

	var auth *service.AuthService
	if repos.Sessions != nil {
		auth = BuildAuthService(AuthConfig{Auth: cfg.Auth, Sessions: repos.Sessions, Logger: logger})
	} else {
		logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
	}

	mailer := deps.Mailer
	if mailer == nil {
		if !cfg.Integrations.Email.Configured() {
			logger.Warn("RESEND_API_KEY not set; invitations will be recorded as failed")
		}
		mailer = email.NewResendMailer(email.ResendMailerOptions{
			APIKey: cfg.Integrations.Email.APIKey,
			From:   cfg.Integrations.Email.From,
			Logger: logger,
		})
	}

	return ServiceContainer{
		Auth:          auth,
		Organizations: orgs,
		Views:         service.NewViewService(service.ViewServiceOptions{Memberships: orgs}),
		Integrations: service.NewIntegrationService(service.IntegrationServiceOptions{
			Probes:  buildProbes(ctx, deps, repos, logger),
			Timeout: cfg.Integrations.ProbeTimeout,
			Logger:  logger,
		}),
		Invitations: service.NewInvitationService(service.InvitationServiceOptions{
			Repo:   repos.Invitations,
			Mailer: mailer,
			Config: service.InvitationConfig{BaseURL: cfg.HTTP.BaseURL, Logger: logger},
		}),
		Sessions: repos.Sessions,
	}, nil
}

// buildProbes creates one probe per integration card, in display order.
// A probe whose client cannot be built reports "not configured" instead of failing startup.
func buildProbes(ctx context.Context, deps *ServiceDeps, repos *serviceRepositories, logger *slog.Logger) []core.IntegrationProbe {
	cfg := deps.Config
	integrations := cfg.Integrations

	cache := &probes.CacheProbe{Client: deps.RedisClient}
	if repos.Sessions != nil {
		cache.Sessions = repos.Sessions
	}

	gemini, err := probes.NewGeminiProbe(ctx, integrations.AI.APIKey, integrations.AI.Model)
	if err != nil {
		logger.WarnContext(ctx, "gemini probe unavailable", "error", err)
		gemini = probes.NewGeminiProbeWithModels(nil, "")
	}

	storageCfg := probes.StorageConfig{}
	if integrations.Storage.Configured() {
		storageCfg = probes.StorageConfig{
			Endpoint:        integrations.Storage.ResolvedEndpoint(),
			Region:          integrations.Storage.Region,
			Bucket:          integrations.Storage.Bucket,
			AccessKeyID:     integrations.Storage.AccessKeyID,
			SecretAccessKey: integrations.Storage.SecretAccessKey,
		}
	}
	storage, err := probes.NewStorageProbe(ctx, storageCfg)
	if err != nil {
		logger.WarnContext(ctx, "storage probe unavailable", "error", err)
		storage = probes.NewStorageProbeWithClient(nil, "")
	}

	return []core.IntegrationProbe{
		&probes.IdentityProbe{
			DiscoveryURL: cfg.Auth.OAuth.ResolvedDiscoveryURL(),
			Mock:         cfg.Auth.Mode == config.AuthModeMock,
		},
		gemini,
		&probes.DatabaseProbe{DB: deps.DB},
		cache,
		storage,
		probes.NewEmailProbe(integrations.Email.APIKey),
	}
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// Signals overrides SIGINT/SIGTERM delivery (tests).
	Signals <-chan os.Signal
}

// RunServicesWithShutdown starts the HTTP server and blocks until a shutdown signal
// arrives or the server fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
		ErrCh:    errCh,
	})

	quit := cfg.Signals
	if quit == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(ch)
		quit = ch
	}

	return waitForShutdown(shutdownConfig{
		quit:       quit,
		errCh:      errCh,
		httpServer: server,
		logger:     logger,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	quit       <-chan os.Signal
	errCh      <-chan error
	httpServer *http.Server
	logger     *slog.Logger
}

// waitForShutdown waits for shutdown signal or server error.
func waitForShutdown(cfg shutdownConfig) error {
	select {
	case sig := <-cfg.quit:
		cfg.logger.Info("shutting down", "signal", sig)
		return ShutdownHTTPServer(ShutdownConfig{
			Context: context.Background(),
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
			Timeout: shutdownTimeout,
		})
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		return err
	}
}

// shutdownTimeout bounds how long in-flight requests may run after a signal.
const shutdownTimeout = 10 * time.Second

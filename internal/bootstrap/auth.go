package bootstrap

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/equihire/equihire-core/config"
	"github.com/equihire/equihire-core/internal/adapters/authroles"
	"github.com/equihire/equihire-core/internal/adapters/claims"
	"github.com/equihire/equihire-core/internal/adapters/devauth"
	"github.com/equihire/equihire-core/internal/adapters/oidc"
	redisadapter "github.com/equihire/equihire-core/internal/adapters/redis"
	"github.com/equihire/equihire-core/internal/service"
)

// SessionKeyPrefix namespaces session keys in Redis.
const SessionKeyPrefix = "equihire:session:"

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	// Sessions overrides the store built from RedisClient.
	Sessions *redisadapter.SessionStore
	Logger   *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if sessions cannot be stored or the provider cannot be built;
// every visitor is then treated as signed out.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessions := cfg.Sessions
	if sessions == nil {
		if cfg.RedisClient == nil {
			logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
			return nil
		}
		sessions = redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, SessionKeyPrefix)
	}

	roles := authroles.StaticRoleMapper{
		AdminGroup: cfg.Auth.AdminGroup,
		UserGroup:  cfg.Auth.UserGroup,
	}

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuthService(cfg.Auth, sessions, roles, logger)
	case config.AuthModeOAuth:
		return buildOAuthService(cfg.Auth, sessions, roles, logger)
	default:
		logger.Warn("auth service disabled: unknown auth mode", "mode", cfg.Auth.Mode)
		return nil
	}
}

func buildDevAuthService(
	auth config.AuthConfig,
	sessions *redisadapter.SessionStore,
	roles authroles.StaticRoleMapper,
	logger *slog.Logger,
) *service.AuthService {
	prov, err := devauth.NewProvider(devauth.Config{
		UserID:       auth.DevAuth.UserID,
		Username:     auth.DevAuth.Username,
		Email:        auth.DevAuth.Email,
		OrgID:        auth.DevAuth.OrgID,
		Groups:       auth.DevAuth.Groups,
		SignedOutURL: auth.OAuth.SignOutRedirectURL,
	})
	if err != nil {
		logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
		return nil
	}
	logger.Warn("dev auth enabled; every sign-in resolves to the configured identity",
		"user_id", auth.DevAuth.UserID)

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: sessions,
		Roles:    roles,
	})
}

func buildOAuthService(
	auth config.AuthConfig,
	sessions *redisadapter.SessionStore,
	roles authroles.StaticRoleMapper,
	logger *slog.Logger,
) *service.AuthService {
	oauth := auth.OAuth
	discoveryURL := oauth.ResolvedDiscoveryURL()
	if discoveryURL == "" || oauth.ClientID == "" {
		logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
			"discovery_url_empty", discoveryURL == "",
			"client_id_empty", oauth.ClientID == "",
		)
		return nil
	}

	mapper, err := claims.NewMapper(claims.Config{
		Username:     auth.Claims.Username,
		Organization: auth.Claims.Organization,
		Groups:       auth.Claims.Groups,
	})
	if err != nil {
		logger.Warn("invalid claim expressions, auth disabled", "error", err)
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:              oauth.ClientID,
		ClientSecret:          oauth.ClientSecret,
		RedirectURL:           oauth.RedirectURL,
		Scope:                 oauth.Scope,
		DiscoveryURL:          discoveryURL,
		LogoutURL:             oauth.LogoutURL,
		PostLogoutRedirectURL: oauth.SignOutRedirectURL,
		OrgID:                 oauth.OrgID,
		Claims:                mapper,
	})
	if err != nil {
		logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: sessions,
		Roles:    roles,
	})
}

package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/config"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/adapters/domainid"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/adapters/googleapi"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/adapters/postgres"
	redisadapter "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/adapters/redis"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/ports"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/service"
)

// AuthConfig contains configuration for the authentication module.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient *redis.Client
	Pool        *pgxpool.Pool
	Logger      *slog.Logger
}

// BuildAuthModule wires the provider client, the session state store, and the
// configured secondary authorization backend into an authentication module.
func BuildAuthModule(cfg AuthConfig) (*service.AuthModule, error) {
	if cfg.RedisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	oauth := cfg.Auth.OAuth
	provider, err := googleapi.NewClient(googleapi.ClientConfig{
		ClientID:         oauth.ClientID,
		ClientSecret:     oauth.ClientSecret,
		AuthEndpoint:     oauth.Endpoint,
		TokenEndpoint:    oauth.TokenEndpoint,
		UserinfoEndpoint: oauth.UserinfoEndpoint,
		Logger:           cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build provider client: %w", err)
	}

	secondary, err := buildSecondary(cfg)
	if err != nil {
		return nil, err
	}

	return service.NewAuthModule(service.Options{
		Provider:         provider,
		States:           redisadapter.NewStateStore(cfg.RedisClient),
		Secondary:        secondary,
		CallbackPath:     oauth.CallbackURI,
		DefaultGroups:    oauth.SplitDefaultGroups(),
		AddDomainAsGroup: oauth.AddDomainAsGroup,
		Logger:           cfg.Logger,
	})
}

// buildSecondary resolves the secondary authorization backend by name. An
// unrecognized name is a startup error unless the configuration says to
// ignore it, in which case the step is skipped with a warning.
func buildSecondary(cfg AuthConfig) (ports.SecondaryAuthorizer, error) {
	oauth := cfg.Auth.OAuth
	switch oauth.LoginContext {
	case "", config.LoginContextNone:
		return nil, nil
	case config.LoginContextDomain:
		return domainid.Authorizer{}, nil
	case config.LoginContextPostgres:
		if cfg.Pool == nil {
			return nil, fmt.Errorf("login context %q requires a database pool", oauth.LoginContext)
		}
		return postgres.NewGroupStore(cfg.Pool), nil
	default:
		if oauth.IgnoreMissingLoginContext {
			if cfg.Logger != nil {
				cfg.Logger.Warn("unknown login context, secondary authorization disabled",
					"login_context", oauth.LoginContext)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("unknown login context %q", oauth.LoginContext)
	}
}

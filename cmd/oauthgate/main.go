package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/config"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/bootstrap"
	httpx "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/http"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/service"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting oauthgate",
		"addr", cfg.HTTP.Addr,
		"callback_uri", cfg.Auth.OAuth.CallbackURI,
		"login_context", cfg.Auth.OAuth.LoginContext)

	redisClient, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cfg.Redis,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	// The database pool is only needed when groups come from login_groups.
	var pool *pgxpool.Pool
	if cfg.Auth.OAuth.LoginContext == config.LoginContextPostgres {
		pool, err = bootstrap.ConnectPool(ctx, bootstrap.DatabaseConfig{
			DBConfig: cfg.Postgres,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		defer pool.Close()
	}

	module, err := bootstrap.BuildAuthModule(bootstrap.AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: redisClient,
		Pool:        pool,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("build auth module: %w", err)
	}

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: buildHandler(&cfg, module, logger),
	}

	return serveWithShutdown(ctx, serveParams{Server: server, Config: &cfg, Logger: logger})
}

// buildHandler assembles the demo routes behind the gate middleware.
func buildHandler(cfg *config.AppConfig, module *service.AuthModule, logger *slog.Logger) http.Handler {
	gate := &httpx.Gate{
		Module:       module,
		ContextPath:  cfg.HTTP.ContextPath,
		CookieDomain: cfg.HTTP.CookieDomain,
		Logger:       logger,
	}
	authHandlers := &httpx.AuthHandlers{
		Module:       module,
		CookieDomain: cfg.HTTP.CookieDomain,
		Logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /auth/status", gate.Observe(http.HandlerFunc(authHandlers.Status)))
	mux.Handle("POST /auth/logout", http.HandlerFunc(authHandlers.Logout))
	mux.Handle("/", gate.Protect(http.HandlerFunc(whoami)))

	return httpx.Recover(logger)(httpx.Logging(logger)(mux))
}

// whoami renders the identity the gate established for the request.
func whoami(w http.ResponseWriter, r *http.Request) {
	ident, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, httpx.ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"principal": ident.Principal.Name,
		"email":     ident.Principal.Profile.Email,
		"groups":    ident.Groups,
		"auth_type": httpx.AuthTypeFromContext(r.Context()),
	})
}

type serveParams struct {
	Server *http.Server
	Config *config.AppConfig
	Logger *slog.Logger
}

// serveWithShutdown runs the server until SIGINT/SIGTERM, then drains
// in-flight requests within the configured timeout.
func serveWithShutdown(ctx context.Context, p serveParams) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p.Logger.InfoContext(gctx, "http server listening", "addr", p.Server.Addr)
		if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), p.Config.HTTP.ShutdownTimeout)
		defer cancel()
		p.Logger.Info("shutting down http server")
		if err := p.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

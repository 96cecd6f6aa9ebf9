// AngelaMos | 2026
// serve.go

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/spf13/cobra"

	"github.com/qhub-dev/qhub/internal/auth"
	"github.com/qhub-dev/qhub/internal/health"
	"github.com/qhub-dev/qhub/internal/middleware"
	"github.com/qhub-dev/qhub/internal/server"
)

const drainDelay = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the account HTTP API",
	Long: `Serve exposes registration, login and session management over HTTP
under /v1/auth, plus /healthz and /readyz. Requires DATABASE_URL.`,
	RunE: runServe,
}

//nolint:funlen // bootstrap code is inherently verbose
func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := a.requireStore(); err != nil {
		a.close(context.Background())
		return err
	}

	if cfg.JWT.UsingDevSecret() {
		logger.Warn("using the development JWT secret; set JWT_SECRET")
	}

	authHandler := auth.NewHandler(a.authSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: a.db},
		health.Dependency{Name: "redis", Checker: a.redis, Optional: true},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.Logger(logger))
	router.Use(middleware.RateLimit(a.limiter, redis_rate.Limit{
		Rate:   cfg.RateLimit.Requests,
		Burst:  cfg.RateLimit.Burst,
		Period: cfg.RateLimit.Window,
	}))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))

	healthHandler.RegisterRoutes(router)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authHandler.Authenticator())
	})

	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		runSweeper(sweepCtx, a.authSvc, cfg.Session.SweepInterval)
	}()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	var serveErr error
	select {
	case serveErr = <-errChan:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	stopSweep()
	<-sweepDone

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if serveErr == nil {
		if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}

	a.close(shutdownCtx)

	logger.Info("application stopped")
	return serveErr
}

// runSweeper removes expired sessions every interval until ctx ends.
func runSweeper(ctx context.Context, svc *auth.Service, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.SweepExpiredSessions(ctx); err != nil && ctx.Err() == nil {
				slog.WarnContext(ctx, "session sweep failed", "error", err)
			}
		}
	}
}

// AngelaMos | 2026
// bootstrap.go

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/qhub-dev/qhub/internal/auth"
	"github.com/qhub-dev/qhub/internal/config"
	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/migrations"
	"github.com/qhub-dev/qhub/internal/ratelimit"
	"github.com/qhub-dev/qhub/internal/session"
	"github.com/qhub-dev/qhub/internal/user"
)

var errNoDatabase = errors.New("DATABASE_URL is not set")

// app holds the process-wide collaborators. db, redis and authSvc are nil
// when their backends are not configured.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	telemetry *core.Telemetry
	db        *core.Database
	redis     *core.Redis
	users     user.Repository
	sessions  session.Repository
	authSvc   *auth.Service
	limiter   *ratelimit.Limiter
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	tel, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
	} else {
		a.telemetry = tel
	}

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, using in-process rate limits", "error", err)
	} else if rdb != nil {
		a.redis = rdb
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	}

	a.limiter = ratelimit.New(a.redis.RateLimitClient(), ratelimit.DefaultTiers)

	if !cfg.AuthEnabled() {
		logger.Info("no database configured, accounts disabled")
		return a, nil
	}

	if err := a.openStore(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	db, err := core.NewDatabase(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	a.db = db
	a.logger.Info("database connected", "dialect", db.Dialect)

	if a.cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, db); err != nil {
			return err
		}
	}

	hasher, err := core.NewPasswordHasher(a.cfg.Hashing)
	if err != nil {
		return err
	}

	a.users = user.NewRepository(db)
	a.sessions = session.NewRepository(db)
	a.authSvc = auth.NewService(
		a.users,
		a.sessions,
		auth.NewTokenService(a.cfg.JWT),
		hasher,
	)
	return nil
}

func (a *app) requireStore() error {
	if a.db == nil {
		return errNoDatabase
	}
	return nil
}

func (a *app) close(ctx context.Context) {
	if a.limiter != nil {
		a.limiter.Close()
	}

	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			a.logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", "error", err)
	}

	if a.db != nil {
		st := a.db.Stats()
		a.logger.Info("database pool closing",
			"open_connections", st.OpenConnections,
			"in_use", st.InUse,
			"wait_count", st.WaitCount,
			"wait_duration", st.WaitDuration,
		)
		if err := a.db.Close(); err != nil {
			a.logger.Error("database close error", "error", err)
		}
	}
}

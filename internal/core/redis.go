// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qhub-dev/qhub/internal/config"
)

var ErrRedisDisabled = errors.New("redis not configured")

// Redis backs the shared chat and API rate limits. A nil *Redis is valid
// and means limits are kept in process.
type Redis struct {
	client *redis.Client
}

// NewRedis returns nil without error when no URL is configured.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	if cfg.URL == "" {
		return nil, nil //nolint:nilnil // redis is optional
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	r := &Redis{client: redis.NewClient(opts)}
	if err := r.Ping(ctx); err != nil {
		_ = r.client.Close() //nolint:errcheck // cleanup on connection failure
		return nil, err
	}
	return r, nil
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.PoolTimeout = 5 * time.Second
	opts.ConnMaxIdleTime = 5 * time.Minute
	return opts, nil
}

// RateLimitClient returns the client for redis_rate, or nil when limits
// stay in process.
func (r *Redis) RateLimitClient() *redis.Client {
	if r == nil {
		return nil
	}
	return r.client
}

func (r *Redis) Ping(ctx context.Context) error {
	if r == nil {
		return ErrRedisDisabled
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}

// AngelaMos | 2026
// limiter.go

package ratelimit

import (
	"context"
	"log/slog"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// Limiter applies GCRA limits through Redis when available and falls back
// to an in-process token bucket per key when Redis is absent or failing.
type Limiter struct {
	remote *redis_rate.Limiter
	local  *localLimiter
	tiers  map[string]TierConfig
}

// New builds a Limiter. rdb may be nil.
func New(rdb *redis.Client, tiers map[string]TierConfig) *Limiter {
	if tiers == nil {
		tiers = DefaultTiers
	}

	l := &Limiter{
		local: newLocalLimiter(),
		tiers: tiers,
	}
	if rdb != nil {
		l.remote = redis_rate.NewLimiter(rdb)
	}
	return l
}

func (l *Limiter) Allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) *redis_rate.Result {
	if l.remote != nil {
		res, err := l.remote.Allow(ctx, key, limit)
		if err == nil {
			return res
		}
		slog.WarnContext(ctx, "redis rate limiter unavailable, using local limiter",
			"key", key,
			"error", err,
		)
	}
	return l.local.allow(key, limit)
}

// AllowTier limits key with the limit configured for tier. Unknown tiers
// get the free tier's limit.
func (l *Limiter) AllowTier(
	ctx context.Context,
	key, tier string,
) (*redis_rate.Result, redis_rate.Limit) {
	limit := l.TierLimit(tier)
	return l.Allow(ctx, key, limit), limit
}

func (l *Limiter) TierLimit(tier string) redis_rate.Limit {
	cfg, ok := l.tiers[tier]
	if !ok {
		cfg = l.tiers["free"]
	}
	return PerMinute(cfg.RequestsPerMinute, cfg.BurstSize)
}

// Close stops the local limiter's cleanup loop.
func (l *Limiter) Close() {
	l.local.stop()
}

type TierConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

var DefaultTiers = map[string]TierConfig{
	"free":       {RequestsPerMinute: 60, BurstSize: 10},
	"pro":        {RequestsPerMinute: 600, BurstSize: 100},
	"enterprise": {RequestsPerMinute: 6000, BurstSize: 1000},
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: time.Minute,
	}
}

// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AcolyteGlobal/SimProj-BE/internal/config"
)

const defaultRedisPingTimeout = 5 * time.Second

// Redis backs the token blacklist and the distributed rate limiter.
type Redis struct {
	Client      *redis.Client
	pingTimeout time.Duration
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	opts.ContextTimeoutEnabled = true
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.PoolTimeout > 0 {
		opts.PoolTimeout = cfg.PoolTimeout
	}

	r := &Redis{
		Client:      redis.NewClient(opts),
		pingTimeout: cfg.PingTimeout,
	}
	if r.pingTimeout <= 0 {
		r.pingTimeout = defaultRedisPingTimeout
	}

	if err := r.ping(ctx); err != nil {
		_ = r.Client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}

	return r, nil
}

func (r *Redis) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.pingTimeout)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

// Ping satisfies health.Checker.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.ping(ctx); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

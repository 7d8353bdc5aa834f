package db

import (
	"context"
	"fmt"
	"time"

	"customkeeps/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns a client without dialing; go-redis connects lazily.
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// NewRedis connects the client used for commit locks and replayed orders.
func NewRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := NewRedisClient(cfg)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}

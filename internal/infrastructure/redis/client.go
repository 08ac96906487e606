package redisinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/event-locator/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient creates the process-wide Redis client. Reconnect backoff grows
// from 50ms up to 2s between attempts.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            cfg.RedisAddr,
		Password:        cfg.RedisPassword,
		DB:              cfg.RedisDB,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 2 * time.Second,
	})
}

// Ping verifies the server is reachable, bounded by a short timeout.
func Ping(ctx context.Context, client redis.Cmdable) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

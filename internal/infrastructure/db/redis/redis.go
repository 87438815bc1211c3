package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// clientName is reported to CLIENT LIST, so cache connections from the
	// API are easy to tell apart on a shared Redis.
	clientName = "mealbridge-api"

	defaultTimeout = 5 * time.Second
)

// Config holds the connection settings for the donation read cache.
type Config struct {
	Addr string
	DB   int
	// Timeout bounds the startup ping and the per-command dial.
	// Defaults to defaultTimeout when zero.
	Timeout time.Duration
}

// Connect builds the Redis client backing the donation read cache and proves
// connectivity with a ping before anything is wired on top of it. The cache
// is a non-fatal side channel at request time, so a dead Redis should fail
// loudly here at startup instead.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		DB:          cfg.DB,
		ClientName:  clientName,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	return client, nil
}

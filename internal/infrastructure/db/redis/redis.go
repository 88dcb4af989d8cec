package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultClientName = "logistics-dashboard"
)

// Config holds the reference cache connection settings.
type Config struct {
	Addr       string
	DB         int
	ClientName string
	Timeout    time.Duration
}

// clientOptions applies the timeout to dialing and to every command, so a
// slow cache never stalls a reference load for longer than that.
func clientOptions(cfg Config) *redis.Options {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}
	return &redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		ClientName:   name,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
}

// Connect opens the client and pings it. The caller owns the client and
// must Close it.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := clientOptions(cfg)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s/%d: %w", cfg.Addr, cfg.DB, err)
	}

	return client, nil
}

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 10 * time.Second
	defaultAppName = "logistics-dashboard"
)

// Config holds the reference store connection settings.
type Config struct {
	URI      string
	Database string
	AppName  string
	Timeout  time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// clientOptions bounds server selection and connect by the configured
// timeout and tags connections with the application name.
func clientOptions(cfg Config) *options.ClientOptions {
	appName := cfg.AppName
	if appName == "" {
		appName = defaultAppName
	}
	return options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetConnectTimeout(cfg.timeout()).
		SetServerSelectionTimeout(cfg.timeout())
}

// Connect opens the client, pings the primary and returns the reference
// database. The caller owns the client and must Disconnect it.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if cfg.Database == "" {
		return nil, nil, fmt.Errorf("mongo connect: database name is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping %s: %w", cfg.Database, err)
	}

	return client, client.Database(cfg.Database), nil
}

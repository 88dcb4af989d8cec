package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development" validate:"oneof=development staging production test"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Engine    EngineConfig
	Feed      FeedConfig
	Reference ReferenceConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

type EngineConfig struct {
	MaxEvents     int           `env:"ENGINE_MAX_EVENTS,     default=1000"  validate:"gt=0"`
	Window        time.Duration `env:"ENGINE_WINDOW,         default=24h"   validate:"gt=0"`
	PruneInterval time.Duration `env:"ENGINE_PRUNE_INTERVAL, default=30s"   validate:"gt=0"`
	FlushInterval time.Duration `env:"ENGINE_FLUSH_INTERVAL, default=500ms" validate:"gt=0"`
	SkewTolerance time.Duration `env:"STATUS_SKEW_TOLERANCE, default=5s"    validate:"gte=0"`
}

// FeedConfig configures the live feed. An empty URL disables the feed.
type FeedConfig struct {
	URL         string        `env:"FEED_URL"          validate:"omitempty,url"`
	Token       string        `env:"FEED_TOKEN"`
	BaseDelay   time.Duration `env:"FEED_BASE_DELAY,   default=500ms" validate:"gt=0"`
	Multiplier  float64       `env:"FEED_MULTIPLIER,   default=2"     validate:"gte=1"`
	MaxDelay    time.Duration `env:"FEED_MAX_DELAY,    default=10s"   validate:"gtefield=BaseDelay"`
	MaxAttempts int           `env:"FEED_MAX_ATTEMPTS, default=0"     validate:"gte=0"`
}

type ReferenceConfig struct {
	DataDir  string        `env:"DATA_DIR,            default=./data"`
	CacheTTL time.Duration `env:"REFERENCE_CACHE_TTL, default=5m" validate:"gt=0"`
}

// MongoConfig configures the primary reference store. An empty URI disables it.
type MongoConfig struct {
	URI      string        `env:"MONGO_URI"`
	Database string        `env:"MONGO_DB,      default=logistics_dashboard"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s" validate:"gt=0"`
}

// RedisConfig configures the reference cache. An empty address disables it.
type RedisConfig struct {
	Addr    string        `env:"REDIS_ADDR"`
	DB      int           `env:"REDIS_DB,      default=0"  validate:"gte=0"`
	Timeout time.Duration `env:"REDIS_TIMEOUT, default=5s" validate:"gt=0"`
}

// Load reads an optional .env file, then the environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves configuration from lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether human-friendly output should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

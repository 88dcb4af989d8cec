// Command dashboard serves the live logistics dashboard state: geofence
// annotated events, shipment projections, overlays and location status.
//
// @title                       Logistics Dashboard API
// @version                     1.0
// @description                 Geofence-aware live event state for the logistics dashboard.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/mosb/logistics-dashboard/internal/api"
	"github.com/mosb/logistics-dashboard/internal/api/metrics"
	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/engine"
	"github.com/mosb/logistics-dashboard/internal/core/overlay"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
	"github.com/mosb/logistics-dashboard/internal/core/service"
	"github.com/mosb/logistics-dashboard/internal/core/status"
	"github.com/mosb/logistics-dashboard/internal/infrastructure/config"
	"github.com/mosb/logistics-dashboard/internal/infrastructure/db/mongo"
	"github.com/mosb/logistics-dashboard/internal/infrastructure/db/redis"
	"github.com/mosb/logistics-dashboard/internal/infrastructure/feed"
	"github.com/mosb/logistics-dashboard/internal/infrastructure/fileref"
	"github.com/mosb/logistics-dashboard/internal/infrastructure/queue"
	"github.com/mosb/logistics-dashboard/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{})
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "logistics-dashboard",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("dashboard stopped with error")
	}
	log.Info().Msg("dashboard stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Optional stores ---
	var (
		db      *mongodriver.Database
		rdb     *goredis.Client
		primary ports.ReferenceSource
		cache   ports.ReferenceCache
	)

	if cfg.Mongo.URI != "" {
		client, database, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			log.Warn().Err(err).Msg("mongodb unavailable, using file reference data")
		} else {
			log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")
			defer func() { _ = client.Disconnect(context.Background()) }()
			db = database
			repo := mongo.NewReferenceRepository(db)
			if err := repo.EnsureIndexes(ctx); err != nil {
				log.Warn().Err(err).Msg("reference indexes not ensured")
			}
			primary = repo
		}
	}

	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:    cfg.Redis.Addr,
			DB:      cfg.Redis.DB,
			Timeout: cfg.Redis.Timeout,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, reference cache disabled")
		} else {
			log.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("redis connected")
			defer func() { _ = client.Close() }()
			rdb = client
			cache = redis.NewReferenceCache(rdb, cfg.Reference.CacheTTL)
		}
	}

	// --- Core ---
	eng := engine.New(engine.Config{
		Capacity: cfg.Engine.MaxEvents,
		Window:   cfg.Engine.Window,
	}, logger.For("engine"))
	eng.Subscribe(metrics.ObserveState)

	agg, err := overlay.NewAggregator(0)
	if err != nil {
		return err
	}
	board := status.NewBoard(cfg.Engine.SkewTolerance, nil)

	dashboard := service.NewDashboardService(eng, board, agg, logger.For("dashboard"))
	reference := service.NewReferenceService(
		primary,
		cache,
		fileref.NewLoader(cfg.Reference.DataDir, logger.For("fileref")),
		eng,
		logger.For("reference"),
	)

	if sum, err := reference.Load(ctx); err != nil {
		metrics.ReferenceLoadsTotal.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Msg("starting without reference data")
	} else {
		metrics.ReferenceLoadsTotal.WithLabelValues(sum.Source).Inc()
	}

	// --- Background workers ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	batcher := queue.NewBatcher(cfg.Engine.FlushInterval, 0, func(events []domain.TrackedEvent) {
		metrics.ObserveIngest(dashboard.IngestEvents(events))
	}, logger.For("batcher"))
	batcher.Start(workerCtx)

	go dashboard.RunMaintenance(workerCtx, cfg.Engine.PruneInterval)

	if cfg.Feed.URL != "" {
		client := feed.NewClient(feed.Config{
			URL:   cfg.Feed.URL,
			Token: cfg.Feed.Token,
			Retry: feed.RetryPolicy{
				MaxAttempts: cfg.Feed.MaxAttempts,
				BaseDelay:   cfg.Feed.BaseDelay,
				Multiplier:  cfg.Feed.Multiplier,
				MaxDelay:    cfg.Feed.MaxDelay,
			},
		}, batcher, dashboard, logger.For("feed"))
		go func() {
			if err := client.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("live feed stopped")
			}
		}()
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Dashboard: dashboard,
		Reference: reference,
		Queue:     batcher,
		Engine:    eng,
		Board:     board,
		Mongo:     db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Log:       logger.For("http"),
	})
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, API served without authentication")
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	// Stop producers, then let the batcher flush what is still pending.
	cancelWorkers()
	select {
	case <-batcher.Done():
	case <-shutdownCtx.Done():
		log.Warn().Msg("batcher did not drain before shutdown timeout")
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-13f-indexer/internal/adapter"
	"github.com/feral-file/ff-13f-indexer/internal/config"
	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/feed"
	"github.com/feral-file/ff-13f-indexer/internal/filing"
	"github.com/feral-file/ff-13f-indexer/internal/holdings"
	"github.com/feral-file/ff-13f-indexer/internal/ingest"
	"github.com/feral-file/ff-13f-indexer/internal/logger"
	"github.com/feral-file/ff-13f-indexer/internal/messaging"
	"github.com/feral-file/ff-13f-indexer/internal/providers/jetstream"
	"github.com/feral-file/ff-13f-indexer/internal/ratelimit"
	"github.com/feral-file/ff-13f-indexer/internal/staging"
	"github.com/feral-file/ff-13f-indexer/internal/store"
	"github.com/feral-file/ff-13f-indexer/internal/sweeper"
)

// app holds the wired collaborators shared by the subcommands
type app struct {
	cfg      *config.IngesterConfig
	db       *gorm.DB
	store    store.Store
	clock    adapter.Clock
	fs       adapter.FileSystem
	upserter ingest.Upserter
}

// newApp loads configuration, initializes the logger and connects to the database
func newApp(ctx context.Context, configFile, envPath string) (*app, error) {
	config.ChdirRepoRoot()
	cfg, err := config.LoadIngesterConfig(configFile, envPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "13f-ingester",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %v", domain.ErrPersistenceUnavailable, err)
	}

	a := &app{cfg: cfg, db: db}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := store.Migrate(ctx, db); err != nil {
		a.close()
		return nil, fmt.Errorf("%w: failed to migrate database: %v", domain.ErrPersistenceUnavailable, err)
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
	)

	a.store = store.NewPGStore(db)
	a.clock = adapter.NewClock()
	a.fs = adapter.NewFileSystem()
	a.upserter = ingest.NewUpserter(a.store, cfg.Worker.UpsertLanes)

	return a, nil
}

// close releases the database connection and flushes the logger
func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Flush(2 * time.Second)
}

func (a *app) pruner(days int) sweeper.RetentionPruner {
	if days <= 0 {
		days = a.cfg.Retention.Days
	}
	return sweeper.NewRetentionPruner(sweeper.RetentionConfig{
		RetentionDays: days,
		MaxRetries:    sweeper.DEFAULT_PRUNE_RETRIES,
	}, a.store, a.clock)
}

// publisher connects to NATS when configured; an empty URL disables publishing
func (a *app) publisher(ctx context.Context) messaging.Publisher {
	if a.cfg.NATS.URL == "" {
		logger.InfoCtx(ctx, "NATS not configured, run summaries will not be published")
		return messaging.NoopPublisher{}
	}

	pub, err := jetstream.NewPublisher(jetstream.Config{
		URL:            a.cfg.NATS.URL,
		MaxReconnects:  a.cfg.NATS.MaxReconnects,
		ReconnectWait:  a.cfg.NATS.ReconnectWait,
		ConnectionName: a.cfg.NATS.ConnectionName,
	}, adapter.NewNatsJetStream(), adapter.NewJSON())
	if err != nil {
		logger.WarnCtx(ctx, "Failed to connect to NATS, run summaries will not be published", zap.Error(err))
		return messaging.NoopPublisher{}
	}
	return pub
}

func (a *app) ingester(publisher messaging.Publisher) ingest.Ingester {
	httpClient := adapter.NewHTTPClient(adapter.HTTPClientConfig{
		Timeout:    a.cfg.HTTP.Timeout,
		MaxRetries: a.cfg.HTTP.MaxRetries,
		UserAgent:  a.cfg.Feed.UserAgent,
		Limiter:    ratelimit.NewLimiter(a.cfg.HTTP.RequestsPerSecond, a.cfg.HTTP.Burst),
	})

	return ingest.NewIngester(ingest.Config{
		PoolSize:    a.cfg.Worker.PoolSize,
		PassTimeout: a.cfg.Pass.Timeout,
		StagingDir:  a.cfg.Staging.Dir,
	}, ingest.Deps{
		Pager: feed.NewPager(feed.Config{
			URL:      a.cfg.Feed.URL,
			FormType: a.cfg.Feed.FormType,
			PageSize: a.cfg.Feed.PageSize,
		}, httpClient, a.clock),
		Fetcher:   filing.NewFetcher(httpClient, filing.NewEdgarIndexExtractor()),
		Parser:    holdings.NewParser(),
		Stager:    staging.NewWriter(a.fs),
		Upserter:  a.upserter,
		Pruner:    a.pruner(0),
		Publisher: publisher,
		Clock:     a.clock,
	})
}

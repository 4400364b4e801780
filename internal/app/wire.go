package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/ad714/bookmirror/internal/blob/s3"
	"github.com/ad714/bookmirror/internal/cache/redis"
	"github.com/ad714/bookmirror/internal/config"
	"github.com/ad714/bookmirror/internal/domain"
	"github.com/ad714/bookmirror/internal/pipeline"
	"github.com/ad714/bookmirror/internal/platform/fliq"
	"github.com/ad714/bookmirror/internal/platform/polymarket"
	"github.com/ad714/bookmirror/internal/service"
	"github.com/ad714/bookmirror/internal/store/postgres"
)

// Dependencies bundles everything the application modes need to operate.
// It is constructed by Wire and torn down by the returned cleanup
// function. Optional pieces (redis caches, blob writer, matcher) are nil
// when their configuration is absent.
type Dependencies struct {
	// Stores
	MarketStore domain.MarketStore
	MatchStore  domain.MatchStore

	// Caches (nil when redis is not configured)
	MarketCache domain.MarketCache
	BookCache   domain.BookCache

	// Blob storage (nil when no bucket is configured)
	BlobWriter domain.BlobWriter

	// Platform clients
	Fliq  *fliq.Client
	Gamma *polymarket.GammaClient

	// Services
	Markets *service.MarketService
	Matcher *service.MatchService
	Sync    *pipeline.CatalogSync
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.MarketStore = postgres.NewMarketStore(pool)
	deps.MatchStore = postgres.NewMatchStore(pool)

	// --- Redis (optional; empty addr disables caching) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.MarketCache = redis.NewMarketCache(redisClient)
		deps.BookCache = redis.NewBookCache(redisClient)
	}

	// --- S3 blob storage (optional; empty bucket disables archiving) ---
	if cfg.S3.Bucket != "" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.BlobWriter = s3blob.NewWriter(s3Client)
	}

	// --- Platform clients ---
	deps.Fliq = fliq.NewClient(cfg.Fliq.BaseURL, cfg.Fliq.APIKey)
	if cfg.Matcher.Enabled && cfg.Polymarket.GammaHost != "" {
		deps.Gamma = polymarket.NewGammaClient(cfg.Polymarket.GammaHost)
	}

	// --- Services ---
	deps.Markets = service.NewMarketService(deps.Fliq, deps.MarketStore, deps.MarketCache, deps.BookCache, logger)
	if deps.Gamma != nil {
		deps.Matcher = service.NewMatchService(deps.Gamma, deps.MarketStore, deps.MatchStore, cfg.Matcher.MinScore, logger)
	}
	deps.Sync = pipeline.NewCatalogSync(deps.Markets, deps.Matcher, deps.BlobWriter, cfg.SyncInterval(), logger)

	return deps, cleanup, nil
}

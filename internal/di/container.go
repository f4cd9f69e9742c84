// Package di assembles the application object graph. Everything is built
// explicitly here and passed down by constructor; there are no package-level
// singletons, so tests and multiple tenants in one process get isolated
// caches, buses, and repositories.
package di

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/violettance/second-brain-sub000/internal/config"
	"github.com/violettance/second-brain-sub000/internal/domain"
	qcache "github.com/violettance/second-brain-sub000/internal/infrastructure/cache"
	"github.com/violettance/second-brain-sub000/internal/infrastructure/observability"
	pcache "github.com/violettance/second-brain-sub000/internal/infrastructure/persistence/cache"
	"github.com/violettance/second-brain-sub000/internal/repository"
	"github.com/violettance/second-brain-sub000/internal/repository/ddb"
	memoryrepo "github.com/violettance/second-brain-sub000/internal/repository/memory"
	"github.com/violettance/second-brain-sub000/internal/service/notes"
)

// Container holds the constructed application services.
type Container struct {
	Config  config.Config
	Logger  *zap.Logger
	Cache   *qcache.QueryCache
	Bus     *domain.InMemoryEventBus
	Repo    repository.NoteRepository
	Metrics *observability.Collector
	Notes   notes.Service
}

// NewContainer builds the full object graph for the given configuration.
// The repository backend is selected once, here, and never re-checked.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var metrics *observability.Collector
	if cfg.Features.EnableMetrics {
		metrics = observability.NewCollector("second_brain")
	}

	var cacheMetrics qcache.Metrics
	if metrics != nil {
		cacheMetrics = metrics
	}
	queryCache := qcache.NewQueryCache(logger.Named("cache"), cacheMetrics)

	baseRepo, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	repo := baseRepo
	if metrics != nil {
		repo = repository.NewInstrumentedNoteRepository(repo, metrics)
	}
	if cfg.Features.EnableCircuitBreaker && cfg.Backend == config.BackendDynamoDB {
		repo = repository.NewBreakerNoteRepository(
			repo, repository.DefaultBreakerConfig("note-store"), logger.Named("breaker"))
	}
	if cfg.Features.EnableCaching {
		repo = pcache.NewCachingNoteRepository(repo, queryCache, pcache.CachingConfig{
			NoteTTL: cfg.Cache.NoteTTL,
			ListTTL: cfg.Cache.ListTTL,
		})
	}

	bus := domain.NewInMemoryEventBus(logger.Named("events"))

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Cache:   queryCache,
		Bus:     bus,
		Repo:    repo,
		Metrics: metrics,
		Notes:   notes.NewService(repo, bus, logger.Named("notes"), metrics),
	}, nil
}

// buildRepository constructs the configured backend.
func buildRepository(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.NoteRepository, error) {
	switch cfg.Backend {
	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		return ddb.NewNoteRepository(client, repository.NewConfig(cfg.TableName, cfg.IndexName)), nil
	case config.BackendMemory:
		logger.Info("no durable backend configured, using in-memory note store")
		return memoryrepo.NewNoteRepository(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

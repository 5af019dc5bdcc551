// Package app wires configuration into the services shared by the server,
// the worker and the admin CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"salesdocs/internal/config"
	corenumerator "salesdocs/internal/core/numerator"
	"salesdocs/internal/domain/documents"
	"salesdocs/internal/domain/projects"
	"salesdocs/internal/domain/warranty"
	"salesdocs/internal/infrastructure/blobstore"
	"salesdocs/internal/infrastructure/cache"
	"salesdocs/internal/infrastructure/http/v1/handlers"
	"salesdocs/internal/infrastructure/notify"
	"salesdocs/internal/infrastructure/numerator"
	"salesdocs/internal/infrastructure/observability"
	"salesdocs/internal/infrastructure/render"
	"salesdocs/internal/infrastructure/storage/postgres"
	"salesdocs/internal/infrastructure/storage/postgres/catalog_repo"
	"salesdocs/internal/infrastructure/storage/postgres/document_repo"
	"salesdocs/internal/infrastructure/storage/postgres/project_repo"
	"salesdocs/pkg/logger"
)

// Options selects the optional parts of the container.
type Options struct {
	// Documents builds the composer with its renderer, blob store and notifier.
	Documents bool
}

// Container holds the long-lived dependencies of a process.
type Container struct {
	Config *config.Config
	Log    *logger.Logger

	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Redis     *redis.Client

	Sequences   corenumerator.Admin
	Warranties  *warranty.Service
	Projects    *projects.Service
	Journal     *postgres.Journal
	Idempotency *postgres.IdempotencyStore
	Metrics     *observability.Metrics

	// Set with Options.Documents
	Documents *documents.Service
	Renderer  *render.Client
	Blobs     documents.BlobStore
	Notifier  *notify.Notifier

	closers []func() error
}

// Build connects to the stores named by cfg. On error everything opened so far is closed.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (c *Container, err error) {
	c = &Container{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			_ = c.Close()
			c = nil
		}
	}()

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	c.Pool, err = postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return c, fmt.Errorf("connect postgres: %w", err)
	}
	c.onClose(func() error { c.Pool.Close(); return nil })
	c.TxManager = postgres.NewTxManager(c.Pool)

	if cfg.SequenceBackend == config.SequenceBackendRedis || opts.Documents {
		c.Redis, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			return c, fmt.Errorf("connect redis: %w", err)
		}
		c.onClose(c.Redis.Close)
	}

	switch cfg.SequenceBackend {
	case config.SequenceBackendRedis:
		c.Sequences = numerator.NewRedisAllocator(c.Redis)
	default:
		// The pool, never the tx manager: allocation must not join a business transaction.
		c.Sequences = numerator.New(c.Pool)
	}

	c.Warranties = warranty.NewService(document_repo.NewWarrantyRepo(c.TxManager), cfg.WarrantyCoverage)
	c.Projects = projects.NewService(
		project_repo.NewProjectRepo(c.TxManager),
		project_repo.NewQuotationRepo(c.TxManager),
		c.TxManager,
		cfg.LedgerMaxRetries,
	)
	c.Journal, err = postgres.NewJournal(c.TxManager)
	if err != nil {
		return c, fmt.Errorf("journal: %w", err)
	}
	c.Idempotency = postgres.NewIdempotencyStore(c.TxManager, cfg.IdempotencyTTL)
	c.Metrics = observability.NewMetrics()
	c.Metrics.RegisterPoolStats(c.Pool)

	if opts.Documents {
		if err := c.buildDocuments(ctx); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (c *Container) buildDocuments(ctx context.Context) error {
	cfg := c.Config

	c.Renderer = render.NewClient(cfg.GotenbergURL, cfg.AppWriteTimeout)
	renderer, err := render.NewRenderer(c.Renderer)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	switch cfg.BlobBackend {
	case config.BlobBackendMemory:
		c.Log.Warn("using in-memory blob store, PDFs are lost on restart")
		c.Blobs = blobstore.NewMemory("salesdocs")
	default:
		gcs, err := blobstore.NewGCS(ctx, blobstore.GCSConfig{
			Bucket:          cfg.GCSBucket,
			CredentialsJSON: cfg.GoogleCredentials,
			CredentialsFile: cfg.GoogleCredsFile,
		})
		if err != nil {
			return fmt.Errorf("gcs: %w", err)
		}
		c.onClose(gcs.Close)
		c.Blobs = gcs
	}

	queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	c.Notifier = notify.NewNotifier(queue)
	c.onClose(c.Notifier.Close)

	policy := documents.DefaultPolicy()
	policy.ZeroCostOnMissingReference = cfg.ZeroCostOnMissingReference
	policy.ShippingTaxRate = cfg.ShippingRate()
	policy.InvoiceDueDays = cfg.InvoiceDueDays
	policy.SignedURLTTL = cfg.SignedURLTTL

	c.Documents = documents.NewService(documents.ServiceConfig{
		Repo:       document_repo.NewDocumentRepo(c.TxManager),
		Resolver:   cache.NewCachedResolver(catalog_repo.NewResolver(c.TxManager), c.Redis, cfg.CatalogCacheTTL),
		Allocator:  c.Sequences,
		Renderer:   renderer,
		Blobs:      c.Blobs,
		Inventory:  catalog_repo.NewInventory(c.TxManager, c.TxManager),
		Warranties: c.Warranties,
		TxManager:  c.TxManager,
		Notifier:   c.Notifier,
		Journal:    c.Journal,
		Metrics:    c.Metrics,
		Policy:     policy,
	})
	return nil
}

// HealthChecks lists the dependencies probed by /health/ready.
func (c *Container) HealthChecks() map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{
		"database": c.Pool,
	}
	if c.Redis != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return c.Redis.Ping(ctx).Err()
		})
	}
	if c.Renderer != nil {
		checks["gotenberg"] = c.Renderer
	}
	if p, ok := c.Blobs.(handlers.Pinger); ok {
		checks["blobstore"] = p
	}
	return checks
}

func (c *Container) onClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

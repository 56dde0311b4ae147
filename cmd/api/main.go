package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediavault_backend/internal/adapters/storage"
	"mediavault_backend/internal/events"
	apphttp "mediavault_backend/internal/http"
	"mediavault_backend/internal/http/router"
	"mediavault_backend/internal/profileimages"
	"mediavault_backend/internal/scheduler"
	"mediavault_backend/migrations"
	"mediavault_backend/platform/config"
	"mediavault_backend/platform/db"
	"mediavault_backend/platform/logger"
	"mediavault_backend/platform/metrics"
	"mediavault_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if cfg.MigrationsEnabled {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, pool, migrations.FS, ".")
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	registry := metrics.NewRegistry()

	// Shared validator instance for dependency injection
	val := validator.New()

	var moduleOpts []profileimages.ModuleOption
	rdb, closeRedis := initRedis(cfg, log)
	if rdb != nil {
		defer closeRedis()
		moduleOpts = append(moduleOpts, profileimages.WithOwnerCache(rdb, cfg.GetOwnerCacheTTL()))
	}

	// ========================================================================
	// Domain Modules
	// ========================================================================

	profileImagesModule, err := profileimages.NewModule(pool, cfg, val, eventBus, registry, log, moduleOpts...)
	if err != nil {
		log.Error("failed to initialize profile images module", "error", err)
		panic("failed to initialize profile images module: " + err.Error())
	}

	archiveScheduler, closeScheduler := initArchiveScheduler(ctx, cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
		profileImagesModule.RegisterHandlers(eventBus, archiveScheduler)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Metrics:  registry,
		Modules: []apphttp.Module{
			profileImagesModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	eventBus.Wait()
}

// initRedis opens the owner cache connection. The cache is optional.
func initRedis(cfg config.RedisConfig, log *logger.Logger) (redis.UniversalClient, func()) {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; owner cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; owner cache disabled", "error", err)
		return nil, nil
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}

	client := redis.NewClient(opt)
	return client, func() {
		_ = client.Close()
	}
}

// initArchiveScheduler enables object-storage archiving when both Redis
// and MinIO are configured.
func initArchiveScheduler(ctx context.Context, cfg *config.Config, log *logger.Logger) (scheduler.ArchiveScheduler, func()) {
	if !cfg.IsRedisEnabled() || !cfg.IsMinIOEnabled() {
		log.Warn("REDIS_URL or MINIO_ENDPOINT not configured; profile image archiving disabled")
		return nil, nil
	}

	archive, err := storage.NewMinIOArchive(cfg)
	if err != nil {
		log.Error("failed to initialize image archive", "error", err)
		return nil, nil
	}
	if err := ensureBucket(ctx, log, archive); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", archive.Bucket())
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize archive scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// ensureBucket wraps the retry logic for verifying the archive bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, archive storage.ImageArchive) error {
	return withRetry(ctx, log, "ensure profile image bucket", 5, 2*time.Second, func() error {
		return archive.EnsureBucketExists(ctx)
	})
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

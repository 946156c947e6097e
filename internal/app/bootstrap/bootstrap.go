package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	reviewservice "reviewdesk/contexts/listing-moderation/review-service"
	postgresadapter "reviewdesk/contexts/listing-moderation/review-service/adapters/postgres"
	redisadapter "reviewdesk/contexts/listing-moderation/review-service/adapters/redis"
	"reviewdesk/contexts/listing-moderation/review-service/adapters/reviewapi"
	workerapp "reviewdesk/contexts/listing-moderation/review-service/application/workers"
	"reviewdesk/contexts/listing-moderation/review-service/ports"
	"reviewdesk/internal/platform/config"
	"reviewdesk/internal/platform/db"
	"reviewdesk/internal/platform/httpserver"
	"reviewdesk/internal/platform/messaging"
	"reviewdesk/internal/platform/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *redis.Client
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres            *db.Postgres
	kafka               *messaging.Kafka
	pendingSync         workerapp.PendingSync
	outboxRelay         workerapp.OutboxRelay
	pendingSyncInterval time.Duration
	outboxPollInterval  time.Duration
	enablePendingSync   bool
	enableOutboxRelay   bool
	logger              *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	pg, repo, err := connectStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	var idempotency ports.IdempotencyStore = repo
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = connectRedis(cfg)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		idempotency = redisadapter.NewIdempotencyStore(redisClient, "", logger)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewDecisionMetrics(registry)

	module := reviewservice.NewModule(reviewservice.Dependencies{
		Submissions:    repo,
		ChangeSets:     repo,
		API:            newReviewAPI(cfg, logger),
		Idempotency:    idempotency,
		Outbox:         repo,
		Metrics:        metrics,
		Clock:          postgresadapter.SystemClock{},
		IDGen:          postgresadapter.UUIDGenerator{},
		IdempotencyTTL: cfg.IdempotencyTTL,
		Logger:         logger,
	})

	server := httpserver.New(module, metrics.Handler(), logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    redisClient,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	pg, repo, err := connectStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	return &WorkerApp{
		postgres: pg,
		kafka:    kafka,
		pendingSync: workerapp.PendingSync{
			API:         newReviewAPI(cfg, logger),
			Submissions: repo,
			Logger:      logger,
		},
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		pendingSyncInterval: cfg.PendingSyncInterval,
		outboxPollInterval:  cfg.OutboxPollInterval,
		enablePendingSync:   cfg.EnablePendingSync,
		enableOutboxRelay:   cfg.EnableOutboxRelay,
		logger:              logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(a.server.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func (a *APIApp) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	return errors.Join(errs...)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"pending_sync_interval", w.pendingSyncInterval.String(),
		"outbox_poll_interval", w.outboxPollInterval.String(),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	if w.enablePendingSync {
		group.Go(func() error {
			return runLoop(groupCtx, w.pendingSyncInterval, func(ctx context.Context) error {
				_, err := w.pendingSync.RunOnce(ctx)
				return err
			})
		})
	}
	if w.enableOutboxRelay {
		group.Go(func() error {
			return runLoop(groupCtx, w.outboxPollInterval, w.outboxRelay.RunOnce)
		})
	}
	return group.Wait()
}

func (w *WorkerApp) Close() error {
	var errs []error
	if w.kafka != nil {
		errs = append(errs, w.kafka.Close())
	}
	if w.postgres != nil {
		errs = append(errs, w.postgres.Close())
	}
	return errors.Join(errs...)
}

// runLoop runs fn on every tick until ctx is cancelled. A failed cycle is
// logged by the worker itself and retried on the next tick.
func runLoop(ctx context.Context, interval time.Duration, fn func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_ = fn(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func connectStore(cfg config.Config, logger *slog.Logger) (*db.Postgres, *postgresadapter.Repository, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, nil, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(cfg.PostgresDSN, db.DefaultOptions(), logger)
	if err != nil {
		return nil, nil, err
	}
	repo := postgresadapter.NewRepository(pg.DB, logger)
	if cfg.AutoMigrate {
		if err := repo.AutoMigrate(context.Background()); err != nil {
			_ = pg.Close()
			return nil, nil, fmt.Errorf("auto migrate review tables: %w", err)
		}
	}
	return pg, repo, nil
}

func connectRedis(cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

func newReviewAPI(cfg config.Config, logger *slog.Logger) *reviewapi.Client {
	return reviewapi.NewClient(reviewapi.Config{
		BaseURL: cfg.ReviewAPIBaseURL,
		Timeout: cfg.ReviewAPITimeout,
	}, nil, logger)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}

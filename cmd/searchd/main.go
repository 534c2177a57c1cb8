// Command searchd runs the search service: an in-memory full-text engine
// behind an HTTP API, with optional PostgreSQL persistence, Redis response
// caching, and Kafka document/analytics streams.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/RaphScript0/mini-engine/internal/analytics"
	"github.com/RaphScript0/mini-engine/internal/cache"
	"github.com/RaphScript0/mini-engine/internal/engine"
	"github.com/RaphScript0/mini-engine/internal/ingest"
	"github.com/RaphScript0/mini-engine/internal/server"
	"github.com/RaphScript0/mini-engine/internal/service"
	"github.com/RaphScript0/mini-engine/internal/store"
	"github.com/RaphScript0/mini-engine/pkg/config"
	"github.com/RaphScript0/mini-engine/pkg/health"
	"github.com/RaphScript0/mini-engine/pkg/kafka"
	"github.com/RaphScript0/mini-engine/pkg/logger"
	"github.com/RaphScript0/mini-engine/pkg/metrics"
	"github.com/RaphScript0/mini-engine/pkg/postgres"
	pkgredis "github.com/RaphScript0/mini-engine/pkg/redis"
	"github.com/RaphScript0/mini-engine/pkg/resilience"
)

// connectRetry covers the window where the service comes up before its
// backends do, as happens under docker compose.
var connectRetry = resilience.RetryConfig{MaxAttempts: 5, InitialDelay: 500 * time.Millisecond}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintln(os.Stderr, "searchd:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := slog.Default().With("component", "searchd")

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	eng := engine.New()
	checker := health.NewChecker()

	var docStore service.Store
	var documents *store.Documents
	if cfg.Postgres.Enabled {
		var pg *postgres.Client
		err := resilience.Retry(ctx, "postgres-connect", connectRetry, func() error {
			var err error
			pg, err = postgres.New(cfg.Postgres)
			return err
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pg.Close()

		documents = store.New(pg)
		if err := documents.EnsureSchema(ctx); err != nil {
			return err
		}
		docStore = documents
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := documents.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	svc := service.New(eng, docStore, m)
	checker.Register("engine", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents indexed", svc.Stats().DocCount),
		}
	})

	if documents != nil {
		docs, err := documents.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("loading persisted documents: %w", err)
		}
		svc.Warm(docs)
	}

	// The cache is best effort: an unreachable Redis degrades to uncached
	// searches instead of refusing to start.
	var searchCache *cache.SearchCache
	if cfg.Redis.Enabled {
		var rc *pkgredis.Client
		err := resilience.Retry(ctx, "redis-connect", connectRetry, func() error {
			var err error
			rc, err = pkgredis.NewClient(cfg.Redis)
			return err
		})
		if err != nil {
			log.Warn("redis unavailable, running without search cache", "error", err)
		} else {
			defer rc.Close()
			searchCache = cache.New(rc, cfg.Redis, m)
			checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
				if err := rc.Ping(ctx); err != nil {
					return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
				}
				return health.ComponentHealth{Status: health.StatusUp}
			})
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.Events)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 0)
		collector.Start(ctx)
		defer collector.Close()

		docConsumer := kafka.NewConsumer(
			cfg.Kafka,
			cfg.Kafka.Topics.Documents,
			ingest.NewConsumer(svc, searchCache).Handle,
		)
		go func() {
			if err := docConsumer.Start(ctx); err != nil {
				log.Error("document consumer stopped", "error", err)
			}
		}()
	}

	handler := server.NewHandler(svc, searchCache, collector, m, cfg.Search)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.NewRouter(handler, checker, cfg, m),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			"addr", httpServer.Addr,
			"metrics", cfg.Metrics.Enabled,
			"cache", searchCache != nil,
			"persistence", documents != nil,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

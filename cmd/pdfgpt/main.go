package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/BDeshi155/pdf-gpt/pkg/api"
	"github.com/BDeshi155/pdf-gpt/pkg/async"
	"github.com/BDeshi155/pdf-gpt/pkg/audit"
	"github.com/BDeshi155/pdf-gpt/pkg/billing"
	"github.com/BDeshi155/pdf-gpt/pkg/config"
	"github.com/BDeshi155/pdf-gpt/pkg/database"
	"github.com/BDeshi155/pdf-gpt/pkg/marketing"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/pdfs"
	"github.com/BDeshi155/pdf-gpt/pkg/profiles"
	"github.com/BDeshi155/pdf-gpt/pkg/promotions"
	"github.com/BDeshi155/pdf-gpt/pkg/session"
	"github.com/BDeshi155/pdf-gpt/pkg/shop"
	"github.com/BDeshi155/pdf-gpt/pkg/sso"
	"github.com/BDeshi155/pdf-gpt/pkg/storage"
	"github.com/BDeshi155/pdf-gpt/pkg/usage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}
	logger.Info("database migrations applied")

	redisClient := redis.NewClient(&redis.Options{
		Addr:       cfg.Redis.URL,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		MaxRetries: cfg.Redis.MaxRetries,
		PoolSize:   cfg.Redis.PoolSize,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		// Caching and rate limiting degrade gracefully without Redis
		logger.WithError(err).Warn("redis unreachable at startup")
	}
	cancel()

	blobs, err := storage.NewBlobStore(cfg.Blob)
	if err != nil {
		return err
	}

	var registry *prometheus.Registry
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
	}

	profileStore := profiles.NewStore(db)
	usageStore := usage.NewStore(db, usage.NewCache(redisClient))
	sessions := session.NewManager(session.NewStore(db), profileStore, cfg.Session, logger, metrics)

	providers, err := sso.NewRegistry(ctx, cfg.OAuth)
	if err != nil {
		return err
	}
	logger.WithField("providers", providers.Names()).Info("identity providers configured")

	pdfService := pdfs.NewService(pdfs.NewStore(db), blobs, usageStore, logger, metrics)
	shopService := shop.NewService(shop.NewStore(db), blobs, logger)
	promoService := promotions.NewService(promotions.NewStore(db))
	marketingService := marketing.NewService(marketing.NewStore(db))
	billingService := billing.NewService(db, profileStore, logger)
	auditRecorder := audit.NewRecorder(db, logger)

	resetScheduler := usage.NewScheduler(usageStore, logger)
	if err := resetScheduler.Start(); err != nil {
		return err
	}

	apiServer := api.NewServer(api.Dependencies{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Sessions:  sessions,
		Providers: providers,
		Profiles:  profileStore,
		Usage:     usageStore,
		PDFs:      pdfService,
		Shop:      shopService,
		Promos:    promoService,
		Marketing: marketingService,
		Billing:   billingService,
		Audit:     auditRecorder,
		Redis:     redisClient,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthServer := newHealthServer(cfg, db, redisClient, blobs, registry)

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	go runSessionCleanup(cleanupCtx, sessions, logger)
	if metrics != nil {
		go pollDBStats(cleanupCtx, metrics, db)
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		stopCleanup()
		return nil
	})
	shutdown.RegisterShutdownFunc(healthServer.Shutdown)
	shutdown.RegisterShutdownFunc(resetScheduler.Stop)

	var group errgroup.Group
	group.Go(func() error {
		logger.WithField("addr", httpServer.Addr).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(shutdown.WaitForShutdown)

	return group.Wait()
}

// newHealthServer serves liveness, readiness and metrics on a separate
// port so probes bypass the session pipeline.
func newHealthServer(cfg *config.Config, db *sql.DB, redisClient *redis.Client, blobs storage.BlobStore, registry *prometheus.Registry) *http.Server {
	checker := observability.NewHealthChecker(db, redisClient, blobs)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", checker.Liveness)
	mux.HandleFunc("/readyz", checker.Readiness)
	if registry != nil {
		mux.Handle("/metrics", observability.MetricsHandler(registry))
	}

	return &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: mux,
	}
}

// runSessionCleanup deletes expired sessions hourly.
func runSessionCleanup(ctx context.Context, sessions *session.Manager, logger *observability.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			async.SafeGo(ctx, logger, 5*time.Minute, "session cleanup", func(ctx context.Context) error {
				deleted, err := sessions.DeleteExpired(ctx)
				if err != nil {
					return err
				}
				if deleted > 0 {
					logger.WithField("deleted", deleted).Info("expired sessions removed")
				}
				return nil
			})
		}
	}
}

func pollDBStats(ctx context.Context, metrics *observability.Metrics, db *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.CollectDBStats(func() (int, int) {
				stats := db.Stats()
				return stats.InUse, stats.Idle
			})
		}
	}
}

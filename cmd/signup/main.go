package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/signup/pkg/api"
	"github.com/platinummonkey/signup/pkg/async"
	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/config"
	"github.com/platinummonkey/signup/pkg/httputil"
	"github.com/platinummonkey/signup/pkg/observability"
	"github.com/platinummonkey/signup/pkg/storage"
	"github.com/platinummonkey/signup/pkg/submission"
)

func main() {
	bootLogger := logrus.New()

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, os.Stdout)
	if err != nil {
		bootLogger.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("Sign-up API failed")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx := context.Background()

	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return err
	}

	var undo cleanups
	started := false
	defer func() {
		if !started {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			undo.run(cleanupCtx, logger)
		}
	}()
	undo.add(otelProviders.Shutdown)

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	undo.add(func(context.Context) error { return db.Close() })
	logger.WithField("driver", cfg.Database.Driver).Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(db); err != nil {
			return err
		}
		logger.Info("Database migrations applied")
	}

	var seedWatcher *catalog.SeedWatcher
	if cfg.Catalog.SeedFile != "" {
		seedWatcher = catalog.NewSeedWatcher(cfg.Catalog.SeedFile, db, logger)
		if err := seedWatcher.Apply(ctx); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)
	metrics.RegisterDBStats(db.DB)

	// Catalog chain: memory LRU -> Redis (optional) -> database
	store := catalog.NewStore(db)
	var provider catalog.Provider = store
	var caches []catalog.Invalidator
	var redisClient *redis.Client

	if cfg.Cache.Enabled {
		if cfg.Cache.RedisURL != "" {
			opts, err := redis.ParseURL(cfg.Cache.RedisURL)
			if err != nil {
				return err
			}
			redisClient = redis.NewClient(opts)
			undo.add(func(context.Context) error { return redisClient.Close() })
			redisCache := catalog.NewRedisCache(provider, redisClient, cfg.Cache.TTL).WithRecorder(metrics)
			provider = redisCache
			caches = append(caches, redisCache)
		}

		memoryCache := catalog.NewMemoryCache(provider, cfg.Cache.L1Size, cfg.Cache.TTL).WithRecorder(metrics)
		provider = memoryCache
		// inner layers are dropped first
		caches = append(caches, memoryCache)
	}

	async.SafeGo(ctx, logger, 30*time.Second, "catalog warm-up", func(ctx context.Context) error {
		_, err := catalog.Load(ctx, provider)
		return err
	})

	var refresher *catalog.Refresher
	if cfg.Cache.Enabled && cfg.Cache.RefreshSchedule != "" {
		refresher, err = catalog.NewRefresher(cfg.Cache.RefreshSchedule, provider, logger, caches...)
		if err != nil {
			return err
		}
		refresher.Start()
		undo.add(refresher.Stop)
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if seedWatcher != nil && cfg.Catalog.WatchSeed {
		seedWatcher.OnChange = func(ctx context.Context) error {
			for _, c := range caches {
				if err := c.Invalidate(ctx); err != nil {
					return err
				}
			}
			return nil
		}
		go func() {
			if err := seedWatcher.Run(watchCtx); err != nil {
				logger.WithError(err).Error("Catalog seed watcher stopped")
			}
		}()
	}

	limiter, err := httputil.NewRateLimiter(cfg.Server.RateLimit, logger)
	if err != nil {
		return err
	}

	server := api.NewServer(api.Config{
		Catalog:      provider,
		Gateway:      submission.NewSQLGateway(db),
		Logger:       logger,
		Metrics:      metrics,
		RateLimiter:  limiter,
		CORSOrigins:  cfg.Server.CORSOrigins,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	apiServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	checker := observability.NewHealthChecker(db.DB, redisClient).
		WithVersion(cfg.Observability.OTelServiceVersion).
		WithCheck("catalog", true, func(ctx context.Context) error {
			cat, err := catalog.Load(ctx, provider)
			if err != nil {
				return err
			}
			if len(cat.Plans()) == 0 {
				return errors.New("no plans configured")
			}
			return nil
		})
	observability.RegisterHealthRoutes(healthMux, checker)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.HealthAddr(),
		Handler: healthMux,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, apiServer, healthServer)
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		stopWatch()
		return nil
	})
	for _, fn := range undo.reversed() {
		shutdown.RegisterShutdownFunc(fn)
	}
	started = true

	serveErr := make(chan error, 2)
	for _, srv := range []*http.Server{apiServer, healthServer} {
		go func(srv *http.Server) {
			logger.WithField("addr", srv.Addr).Info("HTTP server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}(srv)
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := <-serveErr; err != nil {
			logger.WithError(err).Error("HTTP server failed")
			cancel()
		}
	}()

	return shutdown.WaitForShutdown(waitCtx)
}

// Package observability provides structured logging, Prometheus metrics,
// health checks, OpenTelemetry setup and graceful shutdown for the sign-up
// server.
//
// # Logging
//
//	logger, err := observability.NewLogger("info", observability.FormatJSON, os.Stdout)
//	observability.FromContext(ctx, logger).Warn("Submission rejected")
//
// # Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//
// Metrics also records catalog cache lookups (it satisfies
// catalog.CacheRecorder) and submissions by outcome.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(db.DB, redisClient)
//	observability.RegisterHealthRoutes(healthMux, checker)
//
// The database is required; Redis only degrades readiness.
package observability

package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/config"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/database"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/handlers"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/logging"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/metrics"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/repositories"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/services"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/services/workqueue"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.Int("queue_workers", cfg.Queue.Workers))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Migrations run through database/sql; the service itself uses pgx.
	migrationDB, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.DSN(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	refRepo := repositories.NewReferenceRepository(db)
	runRepo := repositories.NewRunRepository(db)
	resultRepo := repositories.NewResultRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db)

	builder := services.NewModelBuilder(logger)
	planner := services.NewPlanner(refRepo, runRepo, resultRepo, builder, cfg.Solver, m, logger)
	resultsService := services.NewResultsService(runRepo, resultRepo, analyticsRepo)

	retry := workqueue.DefaultRetryConfig()
	retry.MaxRetries = cfg.Queue.MaxRetries
	queue := workqueue.New(logger, cfg.Queue.Workers, workqueue.WithRetryConfig(retry))

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewOptimizeHandler(queue, planner, logger).RegisterRoutes(mux)
	handlers.NewResultsHandler(resultsService, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		logger.Info("Starting supply-chain optimizer",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logger.Error("Queue shutdown failed", zap.Error(err))
	}
}

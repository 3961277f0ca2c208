package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diachron-labs/driftd/internal/config"
	"github.com/diachron-labs/driftd/internal/db"
	logpkg "github.com/diachron-labs/driftd/internal/logger"
	"github.com/diachron-labs/driftd/internal/metrics"
	activityrepo "github.com/diachron-labs/driftd/internal/repository/activity"
	adjustmentrepo "github.com/diachron-labs/driftd/internal/repository/adjustment"
	agentrepo "github.com/diachron-labs/driftd/internal/repository/agent"
	anchorrepo "github.com/diachron-labs/driftd/internal/repository/anchor"
	provrepo "github.com/diachron-labs/driftd/internal/repository/provenance"
	termrepo "github.com/diachron-labs/driftd/internal/repository/term"
	versionrepo "github.com/diachron-labs/driftd/internal/repository/version"
	"github.com/diachron-labs/driftd/internal/transport/httpapi"
	agentuc "github.com/diachron-labs/driftd/internal/usecase/agent"
	anchoruc "github.com/diachron-labs/driftd/internal/usecase/anchor"
	driftuc "github.com/diachron-labs/driftd/internal/usecase/drift"
	healthuc "github.com/diachron-labs/driftd/internal/usecase/health"
	provuc "github.com/diachron-labs/driftd/internal/usecase/provenance"
	termuc "github.com/diachron-labs/driftd/internal/usecase/term"
	versionuc "github.com/diachron-labs/driftd/internal/usecase/version"
	versioninfo "github.com/diachron-labs/driftd/internal/version"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the driftd HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting driftd API server",
		zap.String("version", versioninfo.Version),
		zap.String("commit", versioninfo.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
	)

	database, err := db.Open(db.Config{
		Path:          cfg.Database.Path,
		BusyTimeoutMS: cfg.Database.BusyTimeoutMS,
	})
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))
		return err
	}
	defer database.Close()
	logger.Info("Connected to database")

	// Register domain metrics explicitly (no init())
	metrics.RegisterDomainMetrics()

	// Create repositories
	termRepo := termrepo.New(database)
	versionRepo := versionrepo.New(database)
	adjustmentRepo := adjustmentrepo.New(database)
	anchorRepo := anchorrepo.New(database)
	agentRepo := agentrepo.New(database)
	activityRepo := activityrepo.New(database)
	provRepo := provrepo.New(database)

	// Create use case services
	termSvc := termuc.New(termRepo)
	versionSvc := versionuc.New(versionRepo, adjustmentRepo)
	anchorSvc := anchoruc.New(anchorRepo)
	agentSvc := agentuc.New(agentRepo)
	driftSvc, err := driftuc.New(activityRepo, versionRepo, agentRepo, provRepo, cfg.Drift.Policy())
	if err != nil {
		logger.Error("Invalid drift policy", zap.Error(err))
		return err
	}
	provSvc := provuc.New(provRepo)
	healthSvc := healthuc.New(database)

	server := httpapi.NewServer(termSvc, versionSvc, anchorSvc, agentSvc, driftSvc, provSvc, healthSvc,
		time.Duration(cfg.Drift.StaleAfterSec)*time.Second, logger)

	r := chi.NewRouter()
	r.Use(httpapi.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(httpapi.WideEvent(logger))
	r.Use(metrics.Middleware())
	server.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

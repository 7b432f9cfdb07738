// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the AdForge server. It loads
// configuration, connects to Postgres, Valkey, and object storage, starts
// the worker pool and the HTTP API, and shuts everything down gracefully.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/michal-danieluk/adforge/internal/ai"
	"github.com/michal-danieluk/adforge/internal/config"
	"github.com/michal-danieluk/adforge/internal/database"
	"github.com/michal-danieluk/adforge/internal/handlers"
	"github.com/michal-danieluk/adforge/internal/imaging"
	"github.com/michal-danieluk/adforge/internal/pipeline"
	"github.com/michal-danieluk/adforge/internal/queue"
	"github.com/michal-danieluk/adforge/internal/router"
	"github.com/michal-danieluk/adforge/internal/storage"
	"github.com/michal-danieluk/adforge/internal/store"
)

// jobQueueKey is the Valkey list the pipeline schedules work on.
const jobQueueKey = "adforge:jobs"

// noStorage stands in for object storage when none is configured; render
// attempts fail until S3 settings are provided.
type noStorage struct{}

func (noStorage) Upload(ctx context.Context, key, contentType string, data []byte) error {
	return errors.New("object storage is not configured")
}

func main() {
	// Structured logger — outputs text; level debug covers development use.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible job queue).
	valkeyClient, err := queue.Connect(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Connect to S3-compatible object storage (optional — the API works
	// without it, but renders fail until storage is configured).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured — image renders will fail")
	}

	// Initialize libvips for image post-processing.
	imaging.Startup(cfg.WorkerCount)
	defer imaging.Shutdown()

	// Initialize data stores.
	brandStore := store.NewBrandStore(db)
	campaignStore := store.NewCampaignStore(db)
	creativeStore := store.NewCreativeStore(db)
	appConfigStore := store.NewAppConfigStore(db)

	// The image provider key lives in the AppConfig record and may be
	// rotated at runtime; resolve it per call, falling back to the env key.
	imageKey := func(ctx context.Context) (string, error) {
		record, err := appConfigStore.Current()
		if err != nil {
			return "", err
		}
		if record != nil && record.APIKey != "" {
			return record.APIKey, nil
		}
		return cfg.ImageAPIKey, nil
	}

	textClient := ai.NewTextClient(ai.TextOptions{
		Key:     ai.StaticKey(cfg.TextAPIKey),
		Model:   cfg.TextModel,
		BaseURL: cfg.TextBaseURL,
		Timeout: cfg.TextTimeout,
	})

	imageOpts := ai.ImageOptions{
		Key:     imageKey,
		BaseURL: cfg.ImageBaseURL,
		Timeout: cfg.ImageTimeout,
	}
	selector := func(model string) ai.ImageGenerator {
		return ai.SelectImageGenerator(model, imageOpts)
	}

	// Assemble the pipeline.
	jobQueue := queue.New(valkeyClient, jobQueueKey)
	concepts := pipeline.NewConceptGenerator(textClient, creativeStore, cfg.CostPer1KTokens)
	var assets pipeline.AssetStore = noStorage{}
	if storageClient != nil {
		assets = storageClient
	}
	renderer := pipeline.NewImageRenderer(
		creativeStore, appConfigStore, assets,
		selector, imaging.SquareCanvas, cfg.ImageModel,
	)
	orchestrator := pipeline.NewOrchestrator(
		brandStore, campaignStore, creativeStore, concepts, renderer, jobQueue,
	)
	orchestrator.ConceptAttempts = cfg.ConceptAttempts
	orchestrator.RenderAttempts = cfg.RenderAttempts
	orchestrator.RetryDelay = cfg.RetryDelay

	// Start the worker pool consuming pipeline jobs.
	pool := queue.NewPool(jobQueue, cfg.WorkerCount)
	pool.Register(pipeline.JobGenerateCampaign, orchestrator.HandleGenerateCampaign)
	pool.Register(pipeline.JobRenderCreative, orchestrator.HandleRenderCreative)
	pool.Start(context.Background())

	// Create handler groups with their dependencies.
	brandHandlers := handlers.NewBrands(brandStore, storageClient)
	campaignHandlers := handlers.NewCampaigns(campaignStore, creativeStore, brandStore, orchestrator, storageClient)
	settingsHandlers := handlers.NewSettings(appConfigStore)

	// Set up the Chi router with all middleware and routes.
	r := router.New(brandHandlers, campaignHandlers, settingsHandlers)

	// Create the HTTP server with sensible timeouts. The API itself never
	// waits on AI calls (generation is asynchronous), so the write timeout
	// only needs to cover logo uploads.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, stop accepting HTTP
	// requests, then drain the workers. Jobs interrupted mid-flight are
	// requeued and recovered on the next start.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	pool.Stop()

	slog.Info("server stopped gracefully")
}

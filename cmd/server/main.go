package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/resale/internal/config"
	"github.com/JonMunkholm/resale/internal/core"
	_ "github.com/JonMunkholm/resale/internal/core/tables" // Register all collections
	"github.com/JonMunkholm/resale/internal/imaging"
	"github.com/JonMunkholm/resale/internal/logging"
	"github.com/JonMunkholm/resale/internal/store"
	"github.com/JonMunkholm/resale/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	st, err := store.New(ctx, store.Options{
		Backend:     strings.ToLower(cfg.Storage.Backend),
		DataDir:     cfg.Storage.DataDir,
		DatabaseURL: cfg.Storage.DatabaseURL,
		Pool: store.PoolOptions{
			MaxConns: int32(cfg.Storage.MaxConns),
			MinConns: int32(cfg.Storage.MinConns),
		},
	})
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("store opened", "backend", cfg.Storage.Backend, "collections", core.CollectionCount())

	images, err := newImageProcessor(cfg.Images)
	if err != nil {
		slog.Error("failed to set up image processing", "error", err)
		os.Exit(1)
	}

	service := core.NewService(st, core.Options{
		DecrementStock: cfg.Orders.DecrementStock,
		Images:         images,
		ImageLimiter:   core.NewBatchLimiter(cfg.Images.MaxConcurrent, cfg.Images.MaxWait),
	})

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartRetentionScheduler(jobCtx, core.RetentionConfig{
		ArchiveDays:   cfg.Archive.RetentionDays,
		AuditDays:     cfg.Archive.AuditRetentionDays,
		CheckInterval: cfg.Archive.CheckInterval,
	})

	// Graceful shutdown
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		limiter := service.ImageLimiter()
		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for image batches to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("image batches did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		cancelJobs()
		st.Close()
		os.Exit(1)
	}
	<-idle
	slog.Info("server stopped")
}

// newImageProcessor builds the background-removal pipeline selected by cfg.
func newImageProcessor(cfg config.ImagesConfig) (*imaging.Processor, error) {
	var remover imaging.Remover
	switch strings.ToLower(cfg.Remover) {
	case "http":
		remover = imaging.NewHTTPRemover(cfg.RemoverURL, 2*time.Minute)
	default:
		remover = imaging.AlphaRemover{Threshold: 10}
	}
	return imaging.NewProcessor(remover, imaging.Config{
		Dir:         cfg.Dir,
		Workers:     cfg.Workers,
		JPEGQuality: cfg.JPEGQuality,
	})
}

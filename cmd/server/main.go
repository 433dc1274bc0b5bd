package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/palemoky/zhconv/internal/api/rest"
	"github.com/palemoky/zhconv/internal/config"
	"github.com/palemoky/zhconv/internal/database"
	"github.com/palemoky/zhconv/internal/logger"
	"github.com/palemoky/zhconv/internal/registry"
	"github.com/palemoky/zhconv/internal/watcher"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	// Initialize logger
	debug := os.Getenv("GIN_MODE") != "release"
	logger.Init(debug)
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("Failed to load config file, using defaults", zap.Error(err))
		cfg, err = config.Load("")
		if err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}
	}

	logger.Info("Starting zhconv server",
		zap.Int("port", cfg.Server.Port),
		zap.String("default_profile", cfg.Dictionary.DefaultProfile),
		zap.String("profile_dir", cfg.Dictionary.ProfileDir),
		zap.String("store", cfg.Store.Path),
	)

	// Open the dictionary store when configured
	var (
		store    rest.Store
		regStore registry.Store
	)
	if cfg.Store.Path != "" {
		db, err := database.Open(cfg.Store.Path, cfg.Store.MaxOpenConns, cfg.Store.MaxIdleConns)
		if err != nil {
			logger.Fatal("Failed to open store", zap.Error(err))
		}
		defer func() { _ = db.Close() }()

		if err := db.Migrate(); err != nil {
			logger.Fatal("Failed to migrate store", zap.Error(err))
		}

		repo := database.NewCachedRepository(database.NewRepository(db))
		store = rest.Store{DB: db, Repo: repo}
		regStore = repo
	}

	// Build the registry
	reg := registry.New(cfg.Dictionary.DefaultProfile, regStore)
	if cfg.Dictionary.ProfileDir != "" {
		n, err := reg.LoadDir(cfg.Dictionary.ProfileDir)
		if err != nil {
			logger.Fatal("Failed to load profiles", zap.Error(err))
		}
		logger.Info("Profiles loaded", zap.Int("count", n))
	}

	// Fail fast on a broken default profile
	if _, err := reg.Default(); err != nil {
		logger.Fatal("Default profile unavailable", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Hot reload
	if cfg.Dictionary.Watch {
		w, err := watcher.New(reg, cfg.Dictionary.WatchDebounce)
		if err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer func() { _ = w.Close() }()

		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Watcher stopped", zap.Error(err))
			}
		}()
		logger.Info("Watching profile files", zap.Int("files", len(w.Files())))
	}

	// Setup Gin router
	router := rest.SetupRouter(cfg, reg, store)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server started",
			zap.Int("port", cfg.Server.Port),
			zap.String("rest_api", fmt.Sprintf("http://localhost:%d/api/v1", cfg.Server.Port)),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

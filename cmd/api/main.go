package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"teamsqa-backend/application/query"
	"teamsqa-backend/infrastructure/config"
	"teamsqa-backend/infrastructure/di"
)

const cacheSweepInterval = time.Minute

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger

	// Optional overrides file with hot reload. Missing file is not an error;
	// the service runs on env configuration alone.
	if path := os.Getenv("CONFIG_OVERRIDES_FILE"); path != "" {
		watcher, werr := config.NewWatcher(path, logger)
		if werr != nil {
			logger.Warn("Config overrides unavailable", zap.String("path", path), zap.Error(werr))
		} else {
			defer watcher.Close()
			watcher.OnChange(func(o config.Overrides) {
				o.Apply(cfg)
				query.Tune(cfg.CacheListTTL, cfg.CacheCountTTL, cfg.CacheDuplicateTTL)
				logger.Info("Configuration overrides applied",
					zap.Duration("list_ttl", cfg.CacheListTTL),
					zap.Duration("count_ttl", cfg.CacheCountTTL),
					zap.Duration("duplicate_ttl", cfg.CacheDuplicateTTL),
				)
			})
			watcher.Current().Apply(cfg)
			query.Tune(cfg.CacheListTTL, cfg.CacheCountTTL, cfg.CacheDuplicateTTL)
		}
	}

	// Background workers: expired-entry sweep and CloudWatch cache stats.
	go func() {
		ticker := time.NewTicker(cacheSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := container.Cache.SweepExpired(cacheSweepInterval); n > 0 {
					logger.Debug("Swept expired cache entries", zap.Int("count", n))
				}
			}
		}
	}()
	if cfg.EnableMetrics {
		go container.CacheStats.Run(ctx)
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      container.Router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}

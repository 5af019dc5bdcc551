// Package main is the entry point for the salesdocs API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesdocs/internal/app"
	"salesdocs/internal/config"
	"salesdocs/internal/domain/auth"
	v1 "salesdocs/internal/infrastructure/http/v1"
	"salesdocs/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
		Service:     "salesdocs-server",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting salesdocs server",
		"env", cfg.AppEnv,
		"sequence_backend", cfg.SequenceBackend,
		"blob_backend", cfg.BlobBackend,
	)

	container, err := app.Build(ctx, cfg, log, app.Options{Documents: true})
	if err != nil {
		log.Fatalw("failed to build dependencies", "error", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Warnw("close dependencies", "error", err)
		}
	}()

	// --- JWT ---
	var validator *auth.JWTService
	if cfg.JWTSecret != "" {
		validator = auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	} else {
		log.Warn("JWT_SECRET is empty, mutating routes are not authenticated")
	}

	routerCfg := v1.RouterConfig{
		Logger:         log,
		Idempotency:    container.Idempotency,
		Documents:      container.Documents,
		Projects:       container.Projects,
		Warranties:     container.Warranties,
		HealthChecks:   container.HealthChecks(),
		Metrics:        container.Metrics,
		RequestTimeout: cfg.AppRequestTimeout,
		RedirectTLS:    cfg.IsProduction(),
		Debug:          cfg.AppEnv == "development",
	}
	if validator != nil {
		routerCfg.JWTValidator = validator
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "addr", cfg.AppAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Errorw("server failed", "error", err)
	}

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

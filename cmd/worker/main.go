// Package main is the entry point for the salesdocs background worker:
// notification delivery plus periodic maintenance.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hibiken/asynq"

	"salesdocs/internal/app"
	"salesdocs/internal/config"
	"salesdocs/internal/infrastructure/notify"
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
		Service:     "salesdocs-worker",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	log.Info("starting salesdocs worker")

	container, err := app.Build(ctx, cfg, log, app.Options{})
	if err != nil {
		log.Fatalw("failed to build dependencies", "error", err)
	}
	defer func() { _ = container.Close() }()

	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		From: cfg.SMTPFrom,
	})
	consumer := notify.NewWorker(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		cfg.WorkerConcurrency,
		notify.NewHandler(mailer, cfg.NotifyRecipient),
	)

	maintenance := NewMaintenance(container.Warranties, container.Idempotency, cfg.WarrantyRefreshInterval, log)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Errorw("notification consumer stopped", "error", err)
			stop()
		}
	}()
	go func() {
		defer wg.Done()
		maintenance.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutting down worker...")
	wg.Wait()
	log.Info("worker stopped")
}

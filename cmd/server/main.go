// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/storefront-auth/internal/adapter"
	"github.com/MKhiriev/storefront-auth/internal/config"
	"github.com/MKhiriev/storefront-auth/internal/handler"
	"github.com/MKhiriev/storefront-auth/internal/logger"
	"github.com/MKhiriev/storefront-auth/internal/ratelimit"
	"github.com/MKhiriev/storefront-auth/internal/server"
	"github.com/MKhiriev/storefront-auth/internal/service"
	"github.com/MKhiriev/storefront-auth/internal/store"
	"github.com/MKhiriev/storefront-auth/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("storefront-auth")
	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("bye")
}

func run(log *logger.Logger) error {
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}
	if buildVersion != "" && cfg.App.Version == config.DefaultVersion {
		cfg.App.Version = buildVersion
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	db, err := store.NewConnect(ctx, cfg.Storage.DB, log)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("error applying migrations: %w", err)
	}
	storages := store.NewStorages(db, log)

	limiter, closeLimiter, err := ratelimit.New(ctx, cfg.RateLimit, log)
	if err != nil {
		return fmt.Errorf("error creating rate limiter: %w", err)
	}
	defer func() {
		if err := closeLimiter(); err != nil {
			log.Err(err).Msg("error closing rate limiter")
		}
	}()

	sender, err := newMailSender(cfg.Adapter, log)
	if err != nil {
		return fmt.Errorf("error creating mail sender: %w", err)
	}
	dispatcher := workers.NewMailDispatcher(sender, cfg.Workers.MailWorkers, cfg.Workers.MailQueueSize, cfg.Adapter.RequestTimeout, log)

	services, err := service.NewServices(storages, workers.NewPool(cfg.Workers.HashPoolSize), dispatcher, cfg, time.Now, log)
	if err != nil {
		return fmt.Errorf("error creating services: %w", err)
	}

	handlers, err := handler.NewHandlers(services, limiter, cfg, log)
	if err != nil {
		return fmt.Errorf("error creating handlers: %w", err)
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	background := []workers.Worker{
		dispatcher,
		workers.NewTokenSweeper(storages.UserRepository, cfg.Workers.TokenSweepInterval, time.Now, log),
	}
	if memory, ok := limiter.(*ratelimit.Memory); ok {
		background = append(background, workers.NewRateLimitPurger(memory, cfg.Workers.RateLimitPurgeInterval, time.Now, log))
	}
	if handlers.GRPC != nil {
		background = append(background, workers.NewHealthProbe(db, handlers.GRPC, handlers.GRPC.Services(), cfg.Workers.HealthProbeInterval, log))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return workers.NewWorkers(background...).Run(gctx)
	})
	g.Go(func() error {
		return srv.RunServer(gctx)
	})
	return g.Wait()
}

// newMailSender delivers through the mail service when a URL is configured
// and writes messages to the log otherwise.
func newMailSender(cfg config.Adapter, log *logger.Logger) (workers.MailSender, error) {
	if cfg.MailServiceURL == "" {
		log.Warn().Msg("mail service URL is not set, outgoing mail is logged only")
		return adapter.NewLogMailSender(log), nil
	}
	return adapter.NewHTTPMailSender(cfg, log)
}

func printBuildInfo() {
	fmt.Printf("Build version: %s\n", orNA(buildVersion))
	fmt.Printf("Build date: %s\n", orNA(buildDate))
	fmt.Printf("Build commit: %s\n", orNA(buildCommit))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

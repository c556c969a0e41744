package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kislikjeka/walletclient/internal/infra/postgres"
	"github.com/kislikjeka/walletclient/internal/sandbox"
	"github.com/kislikjeka/walletclient/pkg/config"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateSandbox(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid sandbox configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewDefault(cfg.Env)
	log.Info("Starting wallet sandbox server",
		"env", cfg.Env,
		"port", cfg.SandboxPort,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := sandbox.Options{
		JWTSecret:      cfg.SandboxJWTSecret,
		InitialBalance: cfg.InitialBalance(),
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   100,
		RateLimitBurst: 20,
		Registry:       registry,
	}

	if cfg.DatabaseURL != "" {
		db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := postgres.Migrate(ctx, db.Pool); err != nil {
			log.Error("Failed to apply schema", "error", err)
			os.Exit(1)
		}
		opts.Pool = db.Pool
		log.Info("Using PostgreSQL storage")
	}

	sb := sandbox.New(opts, log)

	if cfg.SandboxSeedPath != "" {
		seed, err := config.LoadSeedConfig(cfg.SandboxSeedPath)
		if err != nil {
			log.Error("Failed to load seed accounts", "path", cfg.SandboxSeedPath, "error", err)
			os.Exit(1)
		}
		if err := sb.Seed(ctx, seed); err != nil {
			log.Error("Failed to seed accounts", "error", err)
			os.Exit(1)
		}
		log.Info("Seed accounts loaded", "count", len(seed.Accounts))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.SandboxPort,
		Handler:      sb.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}

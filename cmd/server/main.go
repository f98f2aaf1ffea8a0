// Package main - Entry point for the shipquote API server
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

	"shipquote/api"
	"shipquote/core/auth"
	"shipquote/core/orders"
	"shipquote/core/pricing"
	"shipquote/core/stats"
	"shipquote/db"
	"shipquote/db/ingestion"
	"shipquote/internal/config"
	"shipquote/internal/logging"
	"shipquote/internal/tracing"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Path to a JSON config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "shipquote: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer logging.Sync()
	logger := logging.Logger

	shutdownTracing, err := tracing.Init(cfg.Tracing, version, logger)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
		logger.Info("schema applied")
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("no session secret configured; dashboard and admin routes will reject every token")
	}

	rules := db.NewPricingStore(pool)
	profiles := db.NewProfileStore(pool)
	resolver := pricing.NewResolver(rules, logger)

	server := api.NewServer(api.Dependencies{
		Resolver: resolver,
		Keys:     auth.NewKeyValidator(profiles, logger),
		Sessions: auth.NewSessionVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience, cfg.Auth.Issuer),
		Profiles: profiles,
		Rules:    rules,
		Orders:   orders.NewService(db.NewOrderStore(pool), resolver, logger),
		Stats:    stats.NewService(db.NewStatsStore(pool)),
		Importer: ingestion.NewPipeline(rules, logger),
		DB:       pool,
	}, api.Options{
		Version:        version,
		Pricing:        cfg.Pricing,
		RequestTimeout: cfg.Server.WriteTimeout.Std(),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("shipquote listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("flushing traces failed", zap.Error(err))
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/goaliestats/internal/api/rest"
	"github.com/fortuna/goaliestats/internal/app"
	"github.com/fortuna/goaliestats/internal/config"
	"github.com/fortuna/goaliestats/internal/logging"
)

const (
	serviceName    = "goaliestats"
	serviceVersion = "1.0.0"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		logging.NewJSON(logging.LevelInfo).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", serviceName, "version", serviceVersion)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting service")

	a, err := app.New(ctx, cfg, logger, app.Options{Events: true})
	if err != nil {
		logger.Error("failed to build import service", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	go a.Events.Run(ctx)

	restServer := rest.NewServer(rest.Options{
		Port:           cfg.HTTPPort,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		HealthChecks:   a.HealthChecks,
		WebSocket:      a.Events.HandleImports,
		Logger:         logger,
	}, a.Service)

	go func() {
		logger.Info("REST API listening", "port", cfg.HTTPPort)
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("REST server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("REST server shutdown error", "error", err)
	}

	logger.Info("stopped")
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trackrise/internal/amqp"
	"trackrise/internal/capture"
	"trackrise/internal/config"
	apphttp "trackrise/internal/http"
	"trackrise/internal/ledger"
	applog "trackrise/internal/log"
	"trackrise/internal/netinfo"
	"trackrise/internal/remote"
	"trackrise/internal/remote/memory"
	"trackrise/internal/remote/rest"
	"trackrise/internal/services"
	"trackrise/internal/syncer"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	store, err := ledger.NewStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open ledger", applog.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var remoteStore remote.Store
	switch cfg.RemoteBackend {
	case "rest":
		remoteStore = rest.New(cfg.RemoteBaseURL, cfg.RemoteAPIKey)
		logger.Info("Initialized REST remote backend", "base_url", cfg.RemoteBaseURL)
	default:
		remoteStore = memory.New()
		logger.Info("Initialized memory remote backend")
	}

	probe := &netinfo.DialProbe{
		Addr:    cfg.ProbeAddr,
		Timeout: cfg.ProbeTimeout,
		Kind:    netinfo.Kind(cfg.NetworkKind),
	}

	// AMQP is optional; without it the worker still syncs on its periodic
	// pass.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	dashboard := services.NewDashboard(store, logger)
	transactions := services.NewTransactionService(store, amqpClient, dashboard, logger)
	coordinator := capture.NewCoordinator(capture.PassthroughTranscriber{}, capture.PassthroughRecognizer{})
	reconciler := syncer.New(store, remoteStore, probe, cfg.SyncConcurrency, logger)

	srv := apphttp.NewServer(":"+cfg.Port, transactions, dashboard, store, coordinator, reconciler, logger)
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting trackrise server", "port", cfg.Port, "backend", cfg.RemoteBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

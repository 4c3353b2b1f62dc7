package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trackrise/internal/amqp"
	"trackrise/internal/config"
	"trackrise/internal/ledger"
	applog "trackrise/internal/log"
	"trackrise/internal/netinfo"
	"trackrise/internal/remote"
	"trackrise/internal/remote/memory"
	"trackrise/internal/remote/rest"
	"trackrise/internal/syncer"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting trackrise-worker")

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
		logger.Info("REST remote backend initialized", "base_url", cfg.RemoteBaseURL)
	default:
		remoteStore = memory.New()
		logger.Info("Memory remote backend initialized")
	}

	probe := &netinfo.DialProbe{
		Addr:    cfg.ProbeAddr,
		Timeout: cfg.ProbeTimeout,
		Kind:    netinfo.Kind(cfg.NetworkKind),
	}

	reconciler := syncer.New(store, remoteStore, probe, cfg.SyncConcurrency, logger)

	// AMQP wakes the worker as soon as a transaction is written; the
	// periodic pass below covers missed or dropped messages.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - relying on periodic sync only")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// On startup, push anything left over from a previous run.
	if report, err := reconciler.RunPass(ctx); err != nil {
		logger.Error("Startup sync failed", applog.FieldError, err.Error())
	} else if report.Blocked == "" {
		if _, err := reconciler.PullDeltas(ctx); err != nil {
			logger.Error("Startup pull failed", applog.FieldError, err.Error())
		}
	}

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeSyncRequests(ctx, func(msg *amqp.SyncRequestMessage) error {
				_, err := reconciler.RunPass(ctx)
				return err
			})
			if err != nil && err != context.Canceled {
				logger.Error("Message consumption failed", applog.FieldError, err.Error())
				cancel()
			}
		}()
	}

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				report, err := reconciler.RunPass(ctx)
				if err != nil {
					logger.Error("Periodic sync failed", applog.FieldError, err.Error())
					continue
				}
				if report.Blocked != "" {
					continue
				}
				if _, err := reconciler.PullDeltas(ctx); err != nil {
					logger.Error("Periodic pull failed", applog.FieldError, err.Error())
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give in-flight pushes a moment to finish.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}

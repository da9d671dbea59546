package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"iuran/internal/amqp"
	"iuran/internal/auth"
	"iuran/internal/config"
	"iuran/internal/docstore"
	fsstore "iuran/internal/docstore/firestore"
	"iuran/internal/docstore/memory"
	sqlstore "iuran/internal/docstore/sqlite"
	apphttp "iuran/internal/http"
	"iuran/internal/ledger"
	applog "iuran/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.ComponentApp, applog.ParseLevel(os.Getenv("LOG_LEVEL")))
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	// Choose the document store backend. Memory seeds from the data
	// directory when present.
	var store docstore.Store
	switch cfg.DataBackend {
	case "firestore":
		cli, err := fsstore.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Firestore client", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
			os.Exit(1)
		}
		store = cli
		logger.Info("Initialized Firestore backend", applog.FieldBackend, cfg.DataBackend)
	case "sqlite":
		db, err := sqlstore.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer db.Close()
		store = db
		logger.Info("Initialized SQLite backend", applog.FieldBackend, cfg.DataBackend, "path", cfg.SQLiteDBPath)
	default:
		store = memory.NewFromFiles(cfg.DataDirectory)
		logger.Info("Initialized memory backend", applog.FieldBackend, cfg.DataBackend, "dir", cfg.DataDirectory)
	}

	// Event publication is optional; the dashboard works without a broker.
	var events ledger.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without update events", applog.FieldError, err)
		} else {
			defer client.Close()
			events = client
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
		}
	}

	svc := ledger.NewService(store, events)

	idp := auth.FixedCredentials{
		Username:    cfg.AdminUsername,
		Password:    cfg.AdminPassword,
		DisplayName: cfg.AdminDisplayName,
	}
	var records auth.RecordStore
	if cfg.SessionFile != "" {
		records = auth.FileRecordStore{Path: cfg.SessionFile}
	}
	sessions := auth.NewManager(idp, records, cfg.SessionTTL)

	srv := apphttp.NewServer(":"+cfg.Port, svc, sessions)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
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
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting iuran server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

/*
Package main is the entry point for the direct messaging server.

It is responsible for loading configuration, initializing the global logging system,
opening the configured store and object storage, setting up the HTTP server and the realtime
Manager, and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"dmchat/internal/app/db"
	"dmchat/internal/app/kv"
	"dmchat/internal/app/message"
	"dmchat/internal/app/storage"
	"dmchat/internal/app/user"
	"dmchat/internal/configs"
	"dmchat/internal/handler"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/metrics"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("store_driver", cfg.StoreDriver).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, messages, closer, err := openStore(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open store", "driver", cfg.StoreDriver)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logx.Error(err, "Failed to close store")
		}
	}()

	objects := storage.Unavailable()
	if cfg.S3Configured() {
		objects, err = storage.NewObjectStore(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			S3PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize object storage")
		}
	} else {
		logx.Warn("S3 is not configured; image uploads are disabled.")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := handler.NewAppDeps(cfg, users, messages, objects, metrics.New(reg))

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           handler.Router(ctx, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info("Server starting", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	// hijacked websocket connections are not tracked by the http.Server
	deps.Manager.Shutdown()

	logx.Info("Server gracefully stopped.")
}

// openStore opens the repositories of the configured driver. The returned closer releases them.
func openStore(ctx context.Context, cfg *configs.AppConfig) (user.Repository, message.Repository, io.Closer, error) {
	switch cfg.StoreDriver {
	case configs.DriverBadger:
		store, err := kv.Open(cfg.BadgerPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return kv.NewUserRepository(store), kv.NewMessageRepository(store), store, nil

	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return db.NewUserRepository(pool), db.NewMessageRepository(pool), closerFunc(pool.Close), nil
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

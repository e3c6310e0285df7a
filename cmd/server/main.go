// Package main initializes and starts the QRKeeper HTTP server, setting up
// configuration, logging, the history storage backend, services and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/config"
	"github.com/atinyakov/QRKeeper/internal/db"
	"github.com/atinyakov/QRKeeper/internal/export"
	"github.com/atinyakov/QRKeeper/internal/logger"
	"github.com/atinyakov/QRKeeper/internal/payload"
	"github.com/atinyakov/QRKeeper/internal/render"
	"github.com/atinyakov/QRKeeper/internal/server/handler/http"
	"github.com/atinyakov/QRKeeper/internal/service"
	"github.com/atinyakov/QRKeeper/internal/storage"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// openKV returns the configured key-value backend and a function releasing it.
func openKV(ctx context.Context, options *config.Options) (storage.KV, func() error, error) {
	switch options.StorageBackend {
	case config.BackendPostgres:
		pg, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresKV(pg), pg.Close, nil
	case config.BackendSQLite:
		lite, err := db.InitSQLite(cmp.Or(options.StoragePath, "qrkeeper.db"))
		if err != nil {
			return nil, nil, err
		}
		return storage.NewSQLiteKV(lite), lite.Close, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: options.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return storage.NewRedisKV(client, options.RedisPrefix), client.Close, nil
	default:
		return storage.NewFileKV(options.StoragePath), func() error { return nil }, nil
	}
}

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := openKV(ctx, options)
	if err != nil {
		zapLogger.Fatal("cannot init storage", zap.String("backend", options.StorageBackend), zap.Error(err))
	}
	defer func() {
		if err := closeKV(); err != nil {
			zapLogger.Error("close storage", zap.Error(err))
		}
	}()

	// Initialize business-logic services.
	codec := payload.NewCodec(zapLogger)
	historyService := service.NewHistoryService(storage.NewStore(kv, zapLogger), codec, zapLogger)
	exporter := export.New(render.New(zapLogger))

	if options.Retention > 0 {
		service.StartPruner(ctx, historyService, time.Hour, options.Retention, zapLogger)
	}

	// Create HTTP handlers and build the router.
	qrHandler := &http.QRHandler{Codec: codec, Exporter: exporter, Logger: zapLogger}
	historyHandler := &http.HistoryHandler{HistoryService: historyService, Logger: zapLogger}
	router := http.NewRouter(qrHandler, historyHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown", zap.Error(err))
		}
	}()

	zapLogger.Info("starting server",
		zap.String("addr", options.Port),
		zap.String("storage", options.StorageBackend),
		zap.Bool("tls", options.TLSCert != "" && options.TLSKey != ""),
	)
	if options.TLSCert != "" && options.TLSKey != "" {
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
}

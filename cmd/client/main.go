// Package main runs the QRKeeper terminal client: an interactive shell for
// building, rendering, exporting and saving QR codes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/client"
	"github.com/atinyakov/QRKeeper/internal/export"
	"github.com/atinyakov/QRKeeper/internal/logger"
	"github.com/atinyakov/QRKeeper/internal/payload"
	"github.com/atinyakov/QRKeeper/internal/render"
	"github.com/atinyakov/QRKeeper/internal/service"
	"github.com/atinyakov/QRKeeper/internal/session"
	"github.com/atinyakov/QRKeeper/internal/storage"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags, picks the history store and starts the shell.
func main() {
	var (
		store    string
		baseURL  string
		filePath string
		level    string
		showVer  bool
	)

	flag.StringVar(&store, "store", "file", "history store: file | remote")
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL for the remote store")
	flag.StringVar(&filePath, "f", storage.DefaultFile, "history file for the file store")
	flag.StringVar(&level, "log", "error", "log level")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("QRKeeper Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	l := logger.New()
	if err := l.Init(level); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = l.Log.Sync() }()
	zapLogger := l.Log

	var entries service.EntryStore
	switch store {
	case "file":
		entries = storage.NewStore(storage.NewFileKV(filePath), zapLogger)
	case "remote":
		entries = storage.NewRemoteStore(baseURL, zapLogger)
	default:
		log.Fatalf("unknown store: %s", store)
	}

	codec := payload.NewCodec(zapLogger)
	history := service.NewHistoryService(entries, codec, zapLogger)
	s := session.New(history, export.New(render.New(zapLogger)), zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	zapLogger.Debug("starting shell", zap.String("store", store))
	fmt.Println("QRKeeper. Type 'help' for a list of commands.")
	if err := client.NewShell(s, os.Stdin, os.Stdout, zapLogger).Run(ctx); err != nil {
		zapLogger.Error("shell stopped", zap.Error(err))
		os.Exit(1)
	}
}

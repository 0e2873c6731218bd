package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/adfharrison1/go-docstore/pkg/backend"
	"github.com/adfharrison1/go-docstore/pkg/docstore"
	"github.com/adfharrison1/go-docstore/pkg/server"
)

func main() {
	// Command line flags
	var (
		port           = flag.String("port", "8080", "Server port")
		backendKind    = flag.String("backend", "memory", "Storage backend: memory, bolt or sqlite")
		dataDir        = flag.String("data-dir", ".", "Data directory for storage")
		keyField       = flag.String("key-field", docstore.DefaultKeyField, "Document field holding the entity key")
		backgroundSave = flag.Duration("background-save", 0, "Background save interval for the memory backend (e.g., 5m, 30s). Set to 0 to disable.")
		authSecret     = flag.String("auth-secret", "", "HMAC secret for bearer-token authentication. Empty disables auth.")
		showHelp       = flag.Bool("help", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ndocstore is a document store with pluggable backends and a patch-translation bulk engine.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                    # In-memory store with defaults\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -backend bolt -data-dir /var/lib/docstore\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -backend memory -background-save 5m\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -auth-secret s3cret                # Require signed bearer tokens\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nSafety Note:\n")
		fmt.Fprintf(os.Stderr, "  The memory backend only persists on graceful shutdown unless\n")
		fmt.Fprintf(os.Stderr, "  -background-save is set. Use bolt or sqlite for durable storage.\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
	})))

	engine, err := backend.New(backend.Config{
		Kind:           *backendKind,
		DataDir:        *dataDir,
		KeyField:       *keyField,
		BackgroundSave: *backgroundSave,
	})
	if err != nil {
		log.Fatalf("Failed to open %s backend: %v", *backendKind, err)
	}

	var serverOptions []server.Option
	if *keyField != docstore.DefaultKeyField {
		serverOptions = append(serverOptions, server.WithKeyField(*keyField))
		log.Printf("INFO: Using key field: %s", *keyField)
	}
	if *authSecret != "" {
		serverOptions = append(serverOptions, server.WithAuthSecret(*authSecret))
		log.Printf("INFO: Bearer-token authentication enabled")
	}

	srv := server.NewServer(engine, serverOptions...)

	httpServer := &http.Server{
		Addr:    ":" + *port,
		Handler: srv.Router(),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting docstore server on :%s (%s backend)", *port, *backendKind)
		log.Printf("API endpoints available at http://localhost:%s", *port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if err := srv.Close(); err != nil {
		log.Printf("ERROR: Closing storage engine failed: %v", err)
	}

	log.Println("Server exited")
}

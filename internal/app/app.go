// Package app provides the unified application lifecycle management for Meridian.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	httpapi "github.com/meridiandb/meridian/internal/api/http"
	"github.com/meridiandb/meridian/internal/catalog"
	"github.com/meridiandb/meridian/internal/config"
	"github.com/meridiandb/meridian/internal/observability"
	"github.com/meridiandb/meridian/internal/server"
	"github.com/meridiandb/meridian/internal/snapshot"
	"github.com/meridiandb/meridian/internal/storage"
)

// App manages the Meridian service lifecycle.
type App struct {
	cfg *config.Config

	// Shared resources
	storage     storage.ObjectStorage
	catalog     catalog.Catalog
	stats       *observability.DDLStats
	snapshotter *snapshot.Snapshotter
	shutdown    *server.ShutdownManager

	httpServer *http.Server

	// Lifecycle
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new App with the given configuration.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &App{
		cfg: cfg,
	}, nil
}

// Start initializes shared resources and starts the HTTP server.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.initSharedResources(); err != nil {
		a.cleanup()
		return fmt.Errorf("failed to initialize shared resources: %w", err)
	}

	if a.cfg.Snapshot.RestoreOnStart {
		restored, err := a.snapshotter.Restore(ctx)
		if err != nil {
			log.Printf("Snapshot restore skipped: %v", err)
		} else {
			log.Printf("Restored %d tables from snapshot", restored)
		}
	}

	if err := a.startHTTPServer(); err != nil {
		a.cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if a.cfg.Snapshot.Enabled {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.snapshotter.Run(ctx, a.cfg.Snapshot.Interval)
		}()
		log.Printf("Snapshot exporter started: interval=%v", a.cfg.Snapshot.Interval)
	}

	log.Printf("Meridian started")
	return nil
}

// initSharedResources initializes storage, the catalog, and the shutdown manager.
func (a *App) initSharedResources() error {
	var err error

	switch a.cfg.Storage.Type {
	case "local":
		a.storage, err = storage.NewLocalStorage(a.cfg.Storage.Path)
	case "s3":
		s3Cfg := storage.DefaultS3Config()
		if a.cfg.Storage.S3.Region != "" {
			s3Cfg.Region = a.cfg.Storage.S3.Region
		}
		if a.cfg.Storage.S3.Endpoint != "" {
			s3Cfg.Endpoint = a.cfg.Storage.S3.Endpoint
		}
		a.storage, err = storage.NewS3Storage(
			context.Background(),
			a.cfg.Storage.S3.Bucket,
			s3Cfg,
		)
	default:
		return fmt.Errorf("unsupported storage type: %s", a.cfg.Storage.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Printf("Storage initialized: type=%s", a.cfg.Storage.Type)

	cat, err := catalog.NewCatalog(a.cfg.CatalogPath())
	if err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}
	a.catalog = cat
	log.Printf("Catalog initialized: %s", a.cfg.CatalogPath())

	a.stats = observability.NewDDLStats()
	a.snapshotter = snapshot.NewSnapshotter(a.catalog, a.storage)

	shutdownConfig := server.DefaultShutdownConfig()
	a.shutdown = server.NewShutdownManager(shutdownConfig)
	a.shutdown.RegisterCloser(server.CloserFunc(func() error {
		return a.catalog.Close()
	}))

	return nil
}

// startHTTPServer wires the handlers and starts the API server.
func (a *App) startHTTPServer() error {
	ddlHandler := httpapi.NewDDLHandler(a.catalog, a.stats, a.cfg.DDL.DefaultEngine, a.cfg.DDL.Concurrency)
	tablesHandler := httpapi.NewTablesHandler(a.catalog)
	statsHandler := httpapi.NewStatsHandler(a.stats)

	mux := http.NewServeMux()
	middleware := httpapi.ChainMiddleware(
		server.ShutdownMiddleware(a.shutdown),
		httpapi.RecoveryMiddleware,
		httpapi.RequestIDMiddleware,
		httpapi.CorrelationIDMiddleware,
		httpapi.ContentTypeMiddleware,
	)
	mux.Handle("/v1/ddl", middleware(ddlHandler))
	mux.Handle("/v1/tables", middleware(tablesHandler))
	mux.Handle("/v1/tables/", middleware(tablesHandler))
	mux.Handle("/v1/stats", middleware(statsHandler))
	mux.HandleFunc("/health", a.healthHandler())

	a.httpServer = &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      mux,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		log.Printf("HTTP server listening on %s", a.cfg.HTTP.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the service and releases resources.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	log.Printf("Initiating graceful shutdown...")

	if a.cancel != nil {
		a.cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Export a final snapshot so restarts see the latest schema.
	if a.cfg.Snapshot.Enabled && a.snapshotter != nil {
		if _, err := a.snapshotter.Export(shutdownCtx); err != nil {
			log.Printf("Final snapshot export failed: %v", err)
		}
	}

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Printf("Shutdown timeout, some goroutines may not have finished")
	}

	a.cleanup()

	log.Printf("Meridian stopped")
	return nil
}

// cleanup releases all shared resources.
func (a *App) cleanup() {
	if a.catalog != nil {
		a.catalog.Close()
	}
}

// healthHandler returns the health check handler.
func (a *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":"meridian"}`)
	}
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown(ctx context.Context) error {
	return a.shutdown.ListenForSignals(ctx)
}

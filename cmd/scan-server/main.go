// Command scan-server is the data origin: it serves a scans.json file or a
// stored run at GET /api/scan_data for scan-viewer to poll.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/scanview/internal/api"
	"github.com/banshee-data/scanview/internal/db"
	"github.com/banshee-data/scanview/internal/security"
	"github.com/banshee-data/scanview/internal/source"
	"github.com/banshee-data/scanview/internal/version"
)

var (
	listen      = flag.String("listen", ":3001", "Listen address")
	file        = flag.String("file", "scans.json", "Sample file to serve (ignored when -run is set)")
	dbPath      = flag.String("db", "", "Run database; enables /api/runs and the admin routes")
	runID       = flag.String("run", "", "Serve a stored run instead of -file; \"latest\" follows the newest run")
	dataDir     = flag.String("data-dir", "", "If set, -file must be inside this directory")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// newSource picks what GET /api/scan_data serves.
func newSource(database *db.DB, file, runID, dataDir string) (source.Source, error) {
	if runID != "" {
		if database == nil {
			return nil, fmt.Errorf("-run requires -db")
		}
		if runID == "latest" {
			runID = ""
		}
		return &source.RunSource{Store: database, RunID: runID}, nil
	}
	if file == "" {
		return nil, fmt.Errorf("either -file or -run is required")
	}
	if dataDir != "" {
		if err := security.ValidatePathWithinDirectory(file, dataDir); err != nil {
			return nil, err
		}
	}
	return source.NewFileSource(file), nil
}

// newHandler mounts the origin routes and, with a database, the admin
// routes.
func newHandler(src source.Source, database *db.DB) (http.Handler, error) {
	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewOriginServer(src, database).Handler())
	if database != nil {
		if err := database.AttachAdminRoutes(mux); err != nil {
			return nil, fmt.Errorf("attach admin routes: %w", err)
		}
	}
	return api.LoggingMiddleware("origin")(mux), nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	var database *db.DB
	if *dbPath != "" {
		var err error
		database, err = db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open run database: %v", err)
		}
		defer database.Close()
	}

	src, err := newSource(database, *file, *runID, *dataDir)
	if err != nil {
		log.Fatalf("Invalid source: %v", err)
	}
	handler, err := newHandler(src, database)
	if err != nil {
		log.Fatalf("Failed to build routes: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              *listen,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("scan-server %s listening on %s", version.Version, *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	log.Printf("Graceful shutdown complete")
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrivoltaics/internal/api"
	"agrivoltaics/internal/api/handlers"
	"agrivoltaics/internal/config"
	"agrivoltaics/internal/pipeline"
	"agrivoltaics/internal/store"
	"agrivoltaics/internal/telemetry"

	"github.com/gin-gonic/gin"
)

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "agrivoltaics-api")
	if err != nil {
		log.Printf("Telemetry disabled: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Model options come from the same YAML the CLI reads, when given.
	cfg := config.Default()
	if path := os.Getenv("MODEL_CONFIG"); path != "" {
		if cfg, err = config.Load(path); err != nil {
			log.Fatalf("Failed to load %s: %v", path, err)
		}
		log.Printf("Model options loaded from %s", path)
	}

	sites := handlers.NewSiteHandler()
	if info, err := os.Stat(sites.Dir()); err == nil && info.IsDir() {
		log.Printf("Site directory found: %s", sites.Dir())
	} else {
		log.Printf("Site directory not found at: %s (error: %v)", sites.Dir(), err)
	}

	var archive *store.Archive
	if path := os.Getenv("ARCHIVE_DB"); path != "" {
		if archive, err = store.Open(path); err != nil {
			log.Fatalf("Failed to open archive %s: %v", path, err)
		}
		defer archive.Close()
		log.Printf("Archiving runs in %s", path)
	}

	router := api.NewRouter(api.Deps{
		Engine:  pipeline.New(cfg.SolarOptions(), pipeline.WithTiming(cfg.Output.MeasureTime)),
		Sites:   sites,
		Archive: archive,
	})

	// Serve static files from web/dist (if it exists)
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web/dist"
	}
	if _, err := os.Stat(staticDir); err == nil {
		router.Static("/assets", staticDir+"/assets")
		router.StaticFile("/favicon.ico", staticDir+"/favicon.ico")

		// SPA routing: everything outside /api gets index.html.
		router.NoRoute(func(c *gin.Context) {
			path := c.Request.URL.Path
			if len(path) >= 4 && path[:4] == "/api" {
				c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			} else {
				c.File(staticDir + "/index.html")
			}
		})
		log.Printf("Serving static files from %s", staticDir)
	} else {
		log.Printf("Static directory %s not found, skipping static file serving", staticDir)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	log.Printf("Starting API server on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/handlers"
	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/internal/middleware"
	"github.com/jwebster45206/npc-engine/internal/storage"
	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting NPC Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_backend", cfg.StorageBackend,
		"data_dir", cfg.DataDir)

	tables, err := content.Load(cfg.DataDir)
	if err != nil {
		log.Error("Failed to load content tables", "error", err)
		os.Exit(1)
	}
	if err := tables.Require(); err != nil {
		log.Error("Content tables are incomplete", "error", err)
		os.Exit(1)
	}
	if diags := tables.Check(); len(diags) > 0 {
		log.Warn("Content tables have referential problems", "count", len(diags), "first", diags[0])
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	store, err := storage.Open(storageCtx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	populationHandler := handlers.NewPopulationHandler(log, store, tables, npc.DefaultOptions(), handlers.PopulationDefaults{
		Seed:  cfg.Seed,
		Count: cfg.PopulationSize,
		Max:   cfg.MaxPopulation,
	})
	mux.Handle("/v1/populations", populationHandler)
	mux.Handle("/v1/populations/", populationHandler)

	mux.Handle("/v1/validate", handlers.NewValidateHandler(log, tables))
	mux.Handle("/v1/content/check", handlers.NewContentHandler(log, tables))

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}

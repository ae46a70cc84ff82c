package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drewfoos/pokeshelf/backend/internal/api"
	"github.com/drewfoos/pokeshelf/backend/internal/config"
	"github.com/drewfoos/pokeshelf/backend/internal/database"
	"github.com/drewfoos/pokeshelf/backend/internal/pokemontcg"
	"github.com/drewfoos/pokeshelf/backend/internal/sync"
)

func main() {
	cfg := config.Load()

	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	client := pokemontcg.NewClient(pokemontcg.Config{
		APIKey:            cfg.APIKey,
		MaxRetries:        cfg.MaxRetries,
		RetryWait:         cfg.RetryWait,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
	if cfg.APIKey == "" {
		log.Println("POKEMON_TCG_API_KEY not set; upstream will throttle unauthenticated calls harder")
	}

	syncer := sync.New(database.GetDB(), client, cfg)
	priceWorker := sync.NewPriceWorker(syncer, cfg.PriceUpdateInterval)
	snapshotService := sync.NewSnapshotService(database.GetDB())

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start price worker in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in price worker: %v - restarting in 30 seconds", r)
					}
				}()
				priceWorker.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Println("Price worker restarting after panic recovery...")
			}
		}
	}()

	// Start snapshot service in background
	go snapshotService.Start(ctx)

	// Optionally import brand-new sets on startup (if enabled)
	if os.Getenv("SYNC_NEW_SETS_ON_STARTUP") == "true" {
		go func() {
			// Wait a bit for the server to be ready
			time.Sleep(5 * time.Second)
			log.Println("Starting new-set sync on startup...")
			result, err := syncer.SyncNewSets(ctx)
			if err != nil {
				log.Printf("New-set sync failed: %v", err)
			} else if result != nil {
				log.Printf("New-set sync completed: %d sets imported", result.Count)
			}
		}()
	}

	router := api.SetupRouter(cfg, syncer, priceWorker)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the background workers
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

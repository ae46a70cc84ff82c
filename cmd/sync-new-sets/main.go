package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/drewfoos/pokeshelf/backend/internal/config"
	"github.com/drewfoos/pokeshelf/backend/internal/database"
	"github.com/drewfoos/pokeshelf/backend/internal/pokemontcg"
	"github.com/drewfoos/pokeshelf/backend/internal/sync"
)

// Imports sets that exist upstream but not locally, including their cards.
// Intended for a cron job so new releases show up without a full resync.
func main() {
	flag.Parse()

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
	syncer := sync.New(database.GetDB(), client, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := syncer.SyncNewSets(ctx)
	if err != nil {
		log.Fatalf("New-set sync failed: %v", err)
	}

	if result.Count == 0 {
		fmt.Println("No new sets found")
		return
	}
	fmt.Printf("Imported %d new sets:\n", result.Count)
	for _, s := range result.Imported {
		fmt.Printf("  %s (%s): %d cards\n", s.Name, s.ID, s.CardCount)
	}
}

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

// Refreshes pricing for collection cards (default) or an explicit id list.
func main() {
	ids := flag.StringSlice("ids", nil, "card ids to refresh (default: every card in the collection)")
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

	result, err := syncer.UpdateCardPrices(ctx, *ids)
	if err != nil {
		log.Fatalf("Price refresh failed: %v", err)
	}

	fmt.Printf("Refreshed prices for %d cards\n", result.Count)
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/drewfoos/pokeshelf/backend/internal/config"
	"github.com/drewfoos/pokeshelf/backend/internal/database"
	"github.com/drewfoos/pokeshelf/backend/internal/pokemontcg"
	"github.com/drewfoos/pokeshelf/backend/internal/sync"
)

func main() {
	quiet := flag.Bool("quiet", false, "suppress per-set progress output")
	setID := flag.String("set", "", "sync a single set by id instead of the full catalog")
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

	// Ctrl-C stops the run after the current card; partial progress is kept.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *setID != "" {
		result, err := syncer.SyncSetCards(ctx, *setID)
		if err != nil {
			log.Fatalf("Set sync failed: %v", err)
		}
		fmt.Printf("Set %s: %d cards synced, %d failed\n", *setID, result.Count, result.Failed)
		return
	}

	report := func(p sync.Progress) {
		if *quiet {
			return
		}
		now := time.Now()
		fmt.Printf("[%d/%d] %s  cards=%d failed=%d  elapsed=%v eta=%v\n",
			p.SetsDone, p.SetsTotal, p.CurrentSet,
			p.CardsSynced, p.CardsFailed,
			p.Elapsed(now).Round(time.Second), p.ETA(now).Round(time.Second))
	}

	summary, err := syncer.SyncFullCatalog(ctx, report)
	if summary != nil {
		fmt.Printf("\nCatalog sync finished in %v\n", summary.Duration.Round(time.Second))
		fmt.Printf("  Sets:  %d processed, %d succeeded, %d failed\n",
			summary.SetsProcessed, summary.SetsSucceeded, summary.SetsFailed)
		fmt.Printf("  Cards: %d synced, %d failed\n", summary.CardsSynced, summary.CardsFailed)
		for _, id := range summary.FailedSetIDs {
			fmt.Printf("  failed set: %s\n", id)
		}
	}
	if err != nil {
		log.Printf("Catalog sync ended early: %v", err)
		os.Exit(1)
	}
}

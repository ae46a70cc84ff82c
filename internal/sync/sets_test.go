package sync

import (
	"context"
	"testing"

	"github.com/drewfoos/pokeshelf/backend/internal/models"
	"github.com/drewfoos/pokeshelf/backend/internal/pokemontcg"
)

func TestSyncSetsUpsertsAndIsIdempotent(t *testing.T) {
	f := newFakeUpstream(t)
	f.addSet(pokemontcg.Set{
		ID: "base1", Name: "Base", Series: "Base", Total: 102, PrintedTotal: 102,
		ReleaseDate: "1999/01/09",
		Legalities:  map[string]string{"unlimited": "Legal"},
		Images:      pokemontcg.SetImages{Symbol: "https://images.example/base1/symbol.png"},
	})
	f.addSet(pokemontcg.Set{ID: "sv4", Name: "Paradox Rift", Series: "Scarlet & Violet", Total: 266, ReleaseDate: "2023/11/03"})

	s, db := newTestSyncer(t, f, testConfig())
	ctx := context.Background()

	res, err := s.SyncSets(ctx)
	if err != nil {
		t.Fatalf("SyncSets failed: %v", err)
	}
	if res.Count != 2 || res.Failed != 0 {
		t.Fatalf("result = %+v, want 2 upserted, 0 failed", res)
	}

	var stored models.Set
	if err := db.First(&stored, "id = ?", "base1").Error; err != nil {
		t.Fatalf("set base1 not stored: %v", err)
	}
	if stored.Name != "Base" || stored.Series != "Base" || stored.Total != 102 {
		t.Errorf("stored set = %+v", stored)
	}
	if got := stored.Legalities.Data()["unlimited"]; got != "Legal" {
		t.Errorf("legalities round trip: got %q, want Legal", got)
	}
	if stored.SymbolURL == "" {
		t.Error("symbol url not stored")
	}

	// Re-running must update in place, not duplicate
	f.mu.Lock()
	f.sets[0].Name = "Base Set (1999)"
	f.mu.Unlock()

	res, err = s.SyncSets(ctx)
	if err != nil {
		t.Fatalf("second SyncSets failed: %v", err)
	}
	if res.Count != 2 {
		t.Errorf("second run count = %d, want 2", res.Count)
	}

	var total int64
	db.Model(&models.Set{}).Count(&total)
	if total != 2 {
		t.Errorf("set rows = %d, want 2", total)
	}
	db.First(&stored, "id = ?", "base1")
	if stored.Name != "Base Set (1999)" {
		t.Errorf("set name not refreshed: %q", stored.Name)
	}
}

func TestSyncNewSetsImportsOnlyUnseen(t *testing.T) {
	f := newFakeUpstream(t)
	f.addSet(pokemontcg.Set{ID: "base1", Name: "Base", ReleaseDate: "1999/01/09"})
	f.addSet(pokemontcg.Set{ID: "sv5", Name: "Temporal Forces", ReleaseDate: "2024/03/22", Total: 2},
		upstreamCard("sv5-1", "sv5", "Charmander", "Common", models.FinishNormal, 0.25),
		upstreamCard("sv5-2", "sv5", "Charizard ex", "Double Rare", models.FinishHolofoil, 42),
	)

	s, db := newTestSyncer(t, f, testConfig())
	ctx := context.Background()

	// base1 is already known locally
	if err := db.Create(&models.Set{ID: "base1", Name: "Base"}).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	res, err := s.SyncNewSets(ctx)
	if err != nil {
		t.Fatalf("SyncNewSets failed: %v", err)
	}
	if res.Count != 1 || len(res.Imported) != 1 {
		t.Fatalf("result = %+v, want exactly 1 imported set", res)
	}
	if res.Imported[0].ID != "sv5" || res.Imported[0].CardCount != 2 {
		t.Errorf("imported = %+v, want sv5 with 2 cards", res.Imported[0])
	}

	var cardTotal int64
	db.Model(&models.Card{}).Where("set_id = ?", "sv5").Count(&cardTotal)
	if cardTotal != 2 {
		t.Errorf("sv5 cards = %d, want 2", cardTotal)
	}
	var baseCards int64
	db.Model(&models.Card{}).Where("set_id = ?", "base1").Count(&baseCards)
	if baseCards != 0 {
		t.Errorf("known set base1 should not have been card-synced, got %d cards", baseCards)
	}

	// Second run finds nothing new and fetches no cards
	cardRequests := f.requestsTo("/cards")
	res, err = s.SyncNewSets(ctx)
	if err != nil {
		t.Fatalf("second SyncNewSets failed: %v", err)
	}
	if res.Count != 0 {
		t.Errorf("second run count = %d, want 0", res.Count)
	}
	if got := f.requestsTo("/cards"); got != cardRequests {
		t.Errorf("second run issued %d extra card requests", got-cardRequests)
	}
}

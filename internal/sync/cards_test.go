package sync

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/drewfoos/pokeshelf/backend/internal/models"
	"github.com/drewfoos/pokeshelf/backend/internal/pokemontcg"
)

func TestSyncSetCardsEndToEnd(t *testing.T) {
	f := newFakeUpstream(t)
	noSetStub := upstreamCard("base1-3", "base1", "Chansey", "Rare Holo", models.FinishHolofoil, 0)
	noSetStub.Set = pokemontcg.CardSet{} // exercises the set fallback
	f.addSet(pokemontcg.Set{ID: "base1", Name: "Base", Total: 3, ReleaseDate: "1999/01/09"},
		upstreamCard("base1-1", "base1", "Alakazam", "Rare Holo", models.FinishHolofoil, 60),
		upstreamCard("base1-2", "base1", "Blastoise", "", models.FinishNormal, 12.5),
		noSetStub,
	)

	s, db := newTestSyncer(t, f, testConfig())

	res, err := s.SyncSetCards(context.Background(), "base1")
	if err != nil {
		t.Fatalf("SyncSetCards failed: %v", err)
	}
	if res.Count != 3 || res.Failed != 0 {
		t.Fatalf("result = %+v, want 3 synced, 0 failed", res)
	}

	var cardTotal int64
	db.Model(&models.Card{}).Count(&cardTotal)
	if cardTotal != 3 {
		t.Errorf("card rows = %d, want 3", cardTotal)
	}

	var blastoise models.Card
	if err := db.First(&blastoise, "id = ?", "base1-2").Error; err != nil {
		t.Fatalf("card base1-2 not stored: %v", err)
	}
	if blastoise.Rarity != models.UnknownRarity {
		t.Errorf("missing rarity stored as %q, want %q", blastoise.Rarity, models.UnknownRarity)
	}
	if m, ok := blastoise.TCGPlayer.Data().MarketPrice(models.FinishNormal); !ok || m != 12.5 {
		t.Errorf("pricing round trip: got (%v, %v), want (12.5, true)", m, ok)
	}

	var chansey models.Card
	db.First(&chansey, "id = ?", "base1-3")
	if chansey.SetID != "base1" || chansey.SetName != "Base" {
		t.Errorf("set fallback: got set_id=%q set_name=%q", chansey.SetID, chansey.SetName)
	}

	// Price history only for the two priced cards, under one shared run
	var history []models.PriceHistoryRecord
	if err := db.Find(&history).Error; err != nil {
		t.Fatalf("failed to read price history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history rows = %d, want 2", len(history))
	}
	if history[0].RunID == "" || history[0].RunID != history[1].RunID {
		t.Errorf("history rows should share a run id: %q vs %q", history[0].RunID, history[1].RunID)
	}
	for _, rec := range history {
		if rec.CardID == "base1-2" {
			if rec.Normal == nil || *rec.Normal != 12.5 {
				t.Errorf("normal market for base1-2 = %v, want 12.5", rec.Normal)
			}
			if rec.Holofoil != nil {
				t.Errorf("unexpected holofoil price for base1-2: %v", *rec.Holofoil)
			}
		}
	}
}

func TestSyncSetCardsPaginates(t *testing.T) {
	f := newFakeUpstream(t)
	cards := []pokemontcg.Card{
		upstreamCard("sv1-1", "sv1", "Sprigatito", "Common", models.FinishNormal, 0),
		upstreamCard("sv1-2", "sv1", "Floragato", "Uncommon", models.FinishNormal, 0),
		upstreamCard("sv1-3", "sv1", "Meowscarada", "Rare", models.FinishNormal, 0),
		upstreamCard("sv1-4", "sv1", "Fuecoco", "Common", models.FinishNormal, 0),
		upstreamCard("sv1-5", "sv1", "Crocalor", "Uncommon", models.FinishNormal, 0),
	}
	f.addSet(pokemontcg.Set{ID: "sv1", Name: "Scarlet & Violet", Total: 5}, cards...)

	cfg := testConfig()
	cfg.PageSize = 2
	s, db := newTestSyncer(t, f, cfg)

	res, err := s.SyncSetCards(context.Background(), "sv1")
	if err != nil {
		t.Fatalf("SyncSetCards failed: %v", err)
	}
	if res.Count != 5 {
		t.Errorf("count = %d, want 5", res.Count)
	}
	// Pages of 2, 2, 1; the short final page ends the loop
	if got := f.requestsTo("/cards"); got != 3 {
		t.Errorf("card page requests = %d, want 3", got)
	}
	var total int64
	db.Model(&models.Card{}).Count(&total)
	if total != 5 {
		t.Errorf("card rows = %d, want 5", total)
	}
}

func TestSyncSetCardsIsolatesCardFailures(t *testing.T) {
	f := newFakeUpstream(t)
	f.addSet(pokemontcg.Set{ID: "base1", Name: "Base", Total: 3},
		upstreamCard("base1-1", "base1", "Alakazam", "Rare", models.FinishNormal, 0),
		upstreamCard("base1-2", "base1", "Blastoise", "Rare", models.FinishNormal, 0),
		upstreamCard("base1-3", "base1", "Chansey", "Rare", models.FinishNormal, 0),
	)

	s, db := newTestSyncer(t, f, testConfig())
	s.persistCard = func(card *models.Card) error {
		if card.ID == "base1-2" {
			return errors.New("disk full")
		}
		return s.upsertCard(card)
	}

	res, err := s.SyncSetCards(context.Background(), "base1")
	if err != nil {
		t.Fatalf("SyncSetCards failed: %v", err)
	}
	if res.Count != 2 || res.Failed != 1 {
		t.Errorf("result = %+v, want 2 synced, 1 failed", res)
	}
	if len(res.FailedCardIDs) != 1 || res.FailedCardIDs[0] != "base1-2" {
		t.Errorf("FailedCardIDs = %v, want [base1-2]", res.FailedCardIDs)
	}

	var total int64
	db.Model(&models.Card{}).Count(&total)
	if total != 2 {
		t.Errorf("card rows = %d, want 2", total)
	}
}

func TestSyncSetCardsUnknownSet(t *testing.T) {
	f := newFakeUpstream(t)
	s, _ := newTestSyncer(t, f, testConfig())

	res, err := s.SyncSetCards(context.Background(), "nope")
	if !errors.Is(err, pokemontcg.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if res != nil {
		t.Errorf("expected nil result for a missing set, got %+v", res)
	}
}

func TestSyncSetCardsStopsAfterConsecutivePageFailures(t *testing.T) {
	f := newFakeUpstream(t)
	f.addSet(pokemontcg.Set{ID: "base1", Name: "Base", Total: 3})
	f.intercept = func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Path != "/cards" {
			return false
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"upstream exploded","code":500}}`))
		return true
	}

	cfg := testConfig()
	cfg.MaxPageFailures = 3
	s, _ := newTestSyncer(t, f, cfg)

	res, err := s.SyncSetCards(context.Background(), "base1")
	if err != nil {
		t.Fatalf("expected partial success, got error: %v", err)
	}
	if res.Count != 0 {
		t.Errorf("count = %d, want 0", res.Count)
	}
	if got := f.requestsTo("/cards"); got != 3 {
		t.Errorf("page attempts = %d, want 3 before giving up", got)
	}
}

func TestSyncSetCardsRetriesPageAfterRateLimit(t *testing.T) {
	f := newFakeUpstream(t)
	f.addSet(pokemontcg.Set{ID: "base1", Name: "Base", Total: 2},
		upstreamCard("base1-1", "base1", "Alakazam", "Rare", models.FinishNormal, 0),
		upstreamCard("base1-2", "base1", "Blastoise", "Rare", models.FinishNormal, 0),
	)

	// Exhaust the client's own retry budget first (1 retry), so the page
	// level rate limit handling kicks in, then recover.
	var attempts int32
	f.intercept = func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Path != "/cards" {
			return false
		}
		if atomic.AddInt32(&attempts, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return true
		}
		return false
	}

	s, _ := newTestSyncer(t, f, testConfig())

	res, err := s.SyncSetCards(context.Background(), "base1")
	if err != nil {
		t.Fatalf("SyncSetCards failed: %v", err)
	}
	if res.Count != 2 || res.Failed != 0 {
		t.Errorf("result = %+v, want both cards synced after the rate limit cleared", res)
	}
}

func TestSyncSetCardsSuppressesDuplicateSnapshots(t *testing.T) {
	f := newFakeUpstream(t)
	// The same card observed twice within one run; only one history row may land
	dup := upstreamCard("base1-1", "base1", "Alakazam", "Rare Holo", models.FinishHolofoil, 60)
	f.addSet(pokemontcg.Set{ID: "base1", Name: "Base", Total: 1}, dup, dup)

	s, db := newTestSyncer(t, f, testConfig())

	res, err := s.SyncSetCards(context.Background(), "base1")
	if err != nil {
		t.Fatalf("SyncSetCards failed: %v", err)
	}
	if res.Failed != 0 {
		t.Errorf("duplicate observation must not count as a failure: %+v", res)
	}

	var history int64
	db.Model(&models.PriceHistoryRecord{}).Where("card_id = ?", "base1-1").Count(&history)
	if history != 1 {
		t.Errorf("history rows = %d, want exactly 1 per card per run", history)
	}
}

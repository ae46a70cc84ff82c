// Package sync ingests the Pokemon TCG catalog into the local store: set
// metadata, per-set card pages, and append-only price history. Writes are
// single-record idempotent upserts keyed by upstream IDs, so partial
// completion and overlapping runs are safe by construction.
package sync

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/drewfoos/pokeshelf/backend/internal/config"
	"github.com/drewfoos/pokeshelf/backend/internal/metrics"
	"github.com/drewfoos/pokeshelf/backend/internal/models"
	"github.com/drewfoos/pokeshelf/backend/internal/pokemontcg"
)

type Syncer struct {
	db     *gorm.DB
	client *pokemontcg.Client
	cfg    *config.Config

	// persistCard is swapped out in tests to inject per-card failures.
	persistCard func(card *models.Card) error
}

func New(db *gorm.DB, client *pokemontcg.Client, cfg *config.Config) *Syncer {
	s := &Syncer{
		db:     db,
		client: client,
		cfg:    cfg,
	}
	s.persistCard = s.upsertCard
	return s
}

// sleep waits for d unless the context ends first.
func (s *Syncer) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Syncer) upsertCard(card *models.Card) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(card).Error
}

// recordPriceSnapshot appends one price history row for a card. A duplicate
// within the same capture run is expected under re-runs and suppressed; any
// other insert failure is logged but never fails the card.
func (s *Syncer) recordPriceSnapshot(cardID, runID string, pricing models.TCGPlayerPricing) {
	rec := models.NewPriceHistoryRecord(cardID, runID, time.Now(), pricing)
	if err := s.db.Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			metrics.DuplicatePriceSnapshotsTotal.Inc()
			return
		}
		log.Printf("Price history: warning: failed to record snapshot for %s: %v", cardID, err)
		return
	}
	metrics.PriceSnapshotsTotal.Inc()
}

func cardFromUpstream(uc *pokemontcg.Card, set *pokemontcg.Set) *models.Card {
	rarity := uc.Rarity
	if rarity == "" {
		rarity = models.UnknownRarity
	}

	setID := uc.Set.ID
	setName := uc.Set.Name
	if setID == "" && set != nil {
		setID = set.ID
		setName = set.Name
	}

	return &models.Card{
		ID:                     uc.ID,
		Name:                   uc.Name,
		Supertype:              uc.Supertype,
		Subtypes:               datatypes.NewJSONSlice(uc.Subtypes),
		HP:                     uc.HP,
		Types:                  datatypes.NewJSONSlice(uc.Types),
		SetID:                  setID,
		SetName:                setName,
		Number:                 uc.Number,
		Artist:                 uc.Artist,
		Rarity:                 rarity,
		NationalPokedexNumbers: datatypes.NewJSONSlice(uc.NationalPokedexNumbers),
		ImageSmall:             uc.Images.Small,
		ImageLarge:             uc.Images.Large,
		TCGPlayer:              datatypes.NewJSONType(pricingFromUpstream(uc.TCGPlayer)),
		LastUpdated:            time.Now(),
	}
}

func pricingFromUpstream(tp *pokemontcg.TCGPlayer) models.TCGPlayerPricing {
	if tp == nil {
		return models.TCGPlayerPricing{}
	}
	pricing := models.TCGPlayerPricing{
		URL:       tp.URL,
		UpdatedAt: tp.UpdatedAt,
	}
	if len(tp.Prices) > 0 {
		pricing.Prices = make(map[string]models.PriceRange, len(tp.Prices))
		for finish, p := range tp.Prices {
			pricing.Prices[finish] = models.PriceRange{
				Low:       p.Low,
				Mid:       p.Mid,
				High:      p.High,
				Market:    p.Market,
				DirectLow: p.DirectLow,
			}
		}
	}
	return pricing
}

package sync

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/drewfoos/pokeshelf/backend/internal/metrics"
	"github.com/drewfoos/pokeshelf/backend/internal/models"
)

// PriceRefreshResult reports how many cards had their stored pricing
// refreshed. Cards the upstream response carries no pricing for are skipped,
// not failed.
type PriceRefreshResult struct {
	Count int `json:"count"`
}

// UpdateCardPrices re-fetches current pricing for the given cards, appends a
// price history row per priced card, and overwrites each card's stored
// pricing blob. With no IDs given, the scope is every distinct card anyone
// holds in the collection, never the full catalog. Requests are batched
// into single OR-combined queries with a courtesy delay between batches.
func (s *Syncer) UpdateCardPrices(ctx context.Context, cardIDs []string) (*PriceRefreshResult, error) {
	if len(cardIDs) == 0 {
		var ids []string
		err := s.db.Model(&models.CollectionItem{}).Distinct("card_id").Pluck("card_id", &ids).Error
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate collection card ids: %w", err)
		}
		if len(ids) == 0 {
			log.Println("Price refresh: collection is empty, nothing to refresh")
			return &PriceRefreshResult{}, nil
		}
		cardIDs = ids
	}

	start := time.Now()
	runID := uuid.NewString()
	result := &PriceRefreshResult{}
	batches := batchStrings(cardIDs, s.cfg.PriceBatchSize)

	log.Printf("Price refresh: refreshing %d cards in %d batches", len(cardIDs), len(batches))

	for bi, batch := range batches {
		list, err := s.client.SearchCards(ctx, idQuery(batch), 1, len(batch))
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Printf("Price refresh: batch %d/%d failed: %v", bi+1, len(batches), err)
		} else {
			for i := range list.Data {
				uc := &list.Data[i]
				if uc.TCGPlayer == nil || len(uc.TCGPlayer.Prices) == 0 {
					continue
				}
				pricing := pricingFromUpstream(uc.TCGPlayer)
				s.recordPriceSnapshot(uc.ID, runID, pricing)

				err := s.db.Model(&models.Card{}).Where("id = ?", uc.ID).Updates(map[string]any{
					"tcgplayer":    datatypes.NewJSONType(pricing),
					"last_updated": time.Now(),
				}).Error
				if err != nil {
					log.Printf("Price refresh: failed to update card %s: %v", uc.ID, err)
					continue
				}
				result.Count++
				metrics.PricesRefreshedTotal.Inc()
			}
		}

		if bi < len(batches)-1 {
			if err := s.sleep(ctx, s.cfg.BatchDelay); err != nil {
				return result, err
			}
		}
	}

	metrics.PriceBatchDuration.Observe(time.Since(start).Seconds())
	log.Printf("Price refresh: updated %d cards in %v", result.Count, time.Since(start).Round(time.Millisecond))
	return result, nil
}

// idQuery combines card IDs into one upstream search query.
func idQuery(ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "id:" + id
	}
	return strings.Join(parts, " OR ")
}

func batchStrings(ids []string, size int) [][]string {
	if size <= 0 {
		size = len(ids)
	}
	var batches [][]string
	for len(ids) > size {
		batches = append(batches, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		batches = append(batches, ids)
	}
	return batches
}

package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/drewfoos/pokeshelf/backend/internal/metrics"
	"github.com/drewfoos/pokeshelf/backend/internal/pokemontcg"
)

// CardSyncResult reports one set's card sync. Count is the number of cards
// successfully upserted; FailedCardIDs enumerates the rest for manual
// follow-up.
type CardSyncResult struct {
	Count         int      `json:"count"`
	Failed        int      `json:"failed"`
	FailedCardIDs []string `json:"failed_card_ids,omitempty"`
}

// SyncSetCards pages through every card of one set and upserts each, appending
// a price history snapshot whenever pricing data is present. A single card's
// failure never aborts the set. Page-level failures advance past the page
// (rate-limit errors retry the same page after a long sleep) until a
// consecutive-failure cap ends the set early with whatever was accumulated.
func (s *Syncer) SyncSetCards(ctx context.Context, setID string) (*CardSyncResult, error) {
	start := time.Now()

	set, err := s.client.GetSet(ctx, setID)
	if err != nil {
		if errors.Is(err, pokemontcg.ErrNotFound) {
			return nil, fmt.Errorf("set %q does not exist upstream: %w", setID, err)
		}
		return nil, fmt.Errorf("failed to verify set %q: %w", setID, err)
	}

	log.Printf("Card sync: starting set %s (%q, %d cards expected)", set.ID, set.Name, set.Total)

	// One capture run per invocation; the unique (card, run) index turns
	// any double-observation into a benign duplicate.
	runID := uuid.NewString()
	query := "set.id:" + setID

	result := &CardSyncResult{}
	page := 1
	consecutiveFailures := 0

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		list, err := s.client.SearchCards(ctx, query, page, s.cfg.PageSize)
		if err != nil {
			consecutiveFailures++
			if consecutiveFailures >= s.cfg.MaxPageFailures {
				log.Printf("Card sync: giving up on set %s after %d consecutive page failures",
					setID, consecutiveFailures)
				break
			}
			if errors.Is(err, pokemontcg.ErrRateLimited) {
				log.Printf("Card sync: rate limited on set %s page %d, sleeping %v",
					setID, page, s.cfg.RateLimitSleep)
				if err := s.sleep(ctx, s.cfg.RateLimitSleep); err != nil {
					return result, err
				}
				continue // retry the same page
			}
			// Skipping the page loses its cards for this run; the next
			// full sync picks them up again.
			log.Printf("Card sync: page %d of set %s failed, skipping: %v", page, setID, err)
			page++
			continue
		}
		consecutiveFailures = 0

		for i := range list.Data {
			uc := &list.Data[i]
			card := cardFromUpstream(uc, set)
			if err := s.persistCard(card); err != nil {
				log.Printf("Card sync: failed to upsert card %s: %v", uc.ID, err)
				result.Failed++
				result.FailedCardIDs = append(result.FailedCardIDs, uc.ID)
				metrics.CardSyncFailuresTotal.Inc()
				continue
			}
			result.Count++
			metrics.CardsSyncedTotal.Inc()

			if pricing := card.TCGPlayer.Data(); pricing.HasPrices() {
				s.recordPriceSnapshot(uc.ID, runID, pricing)
			}

			// Smooth the write rate within a page
			if s.cfg.CardDelayEvery > 0 && (i+1)%s.cfg.CardDelayEvery == 0 {
				if err := s.sleep(ctx, s.cfg.CardDelay); err != nil {
					return result, err
				}
			}
		}

		if len(list.Data) < s.cfg.PageSize {
			break // short page means end of results
		}
		page++
		if err := s.sleep(ctx, s.cfg.PageDelay); err != nil {
			return result, err
		}
	}

	metrics.SetSyncDuration.Observe(time.Since(start).Seconds())
	log.Printf("Card sync: set %s done, %d cards synced, %d failed in %v",
		setID, result.Count, result.Failed, time.Since(start).Round(time.Millisecond))
	return result, nil
}

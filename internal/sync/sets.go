package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/drewfoos/pokeshelf/backend/internal/metrics"
	"github.com/drewfoos/pokeshelf/backend/internal/models"
	"github.com/drewfoos/pokeshelf/backend/internal/pokemontcg"
)

// SetSyncResult reports one set metadata sync. Count is the number of sets
// actually upserted, not the number fetched; failed upserts are reported
// separately so the caller never overstates success.
type SetSyncResult struct {
	Count        int      `json:"count"`
	Failed       int      `json:"failed"`
	FailedSetIDs []string `json:"failed_set_ids,omitempty"`
}

// SyncSets refreshes the metadata of every upstream set. A single set's
// upsert failure is logged and counted without aborting the batch.
func (s *Syncer) SyncSets(ctx context.Context) (*SetSyncResult, error) {
	list, err := s.client.ListSets(ctx, 1, s.cfg.SetPageSize, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch set list: %w", err)
	}

	// The full catalog fits one max-size page today (~170 sets). Complain
	// loudly if that ever stops being true.
	if list.TotalCount > len(list.Data) {
		log.Printf("Set sync: upstream reports %d sets but one page holds %d; raise SYNC_SET_PAGE_SIZE or add pagination",
			list.TotalCount, len(list.Data))
	}

	result := &SetSyncResult{}
	for i := range list.Data {
		us := &list.Data[i]
		if err := s.upsertSet(us); err != nil {
			log.Printf("Set sync: failed to upsert set %s: %v", us.ID, err)
			result.Failed++
			result.FailedSetIDs = append(result.FailedSetIDs, us.ID)
			metrics.SetSyncFailuresTotal.Inc()
			continue
		}
		result.Count++
		metrics.SetsSyncedTotal.Inc()
	}

	log.Printf("Set sync: upserted %d sets (%d failed)", result.Count, result.Failed)
	return result, nil
}

// ImportedSet summarizes one newly discovered set after its initial card sync.
type ImportedSet struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CardCount int    `json:"card_count"`
}

type NewSetsResult struct {
	Count    int           `json:"count"`
	Imported []ImportedSet `json:"imported_sets"`
}

// SyncNewSets diffs the upstream set list against stored set IDs and imports
// every unseen set: metadata first, then its full card list. A pause between
// imports keeps a burst of brand-new sets from tripping upstream throttling.
func (s *Syncer) SyncNewSets(ctx context.Context) (*NewSetsResult, error) {
	list, err := s.client.ListSets(ctx, 1, s.cfg.SetPageSize, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch set list: %w", err)
	}

	var existing []string
	if err := s.db.Model(&models.Set{}).Pluck("id", &existing).Error; err != nil {
		return nil, fmt.Errorf("failed to read stored set ids: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		known[id] = struct{}{}
	}

	var newSets []pokemontcg.Set
	for _, us := range list.Data {
		if _, ok := known[us.ID]; !ok {
			newSets = append(newSets, us)
		}
	}

	result := &NewSetsResult{Imported: []ImportedSet{}}
	if len(newSets) == 0 {
		log.Println("New set sync: no new sets found")
		return result, nil
	}

	log.Printf("New set sync: found %d new sets", len(newSets))
	for i := range newSets {
		us := &newSets[i]
		if err := s.upsertSet(us); err != nil {
			log.Printf("New set sync: failed to create set %s: %v", us.ID, err)
			metrics.SetSyncFailuresTotal.Inc()
			continue
		}
		metrics.SetsSyncedTotal.Inc()

		imported := ImportedSet{ID: us.ID, Name: us.Name}
		cards, err := s.SyncSetCards(ctx, us.ID)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Printf("New set sync: card sync for %s failed: %v", us.ID, err)
		}
		if cards != nil {
			imported.CardCount = cards.Count
		}

		result.Imported = append(result.Imported, imported)
		result.Count++
		log.Printf("New set sync: imported %s (%q) with %d cards", us.ID, us.Name, imported.CardCount)

		if i < len(newSets)-1 {
			if err := s.sleep(ctx, s.cfg.SetImportDelay); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

func (s *Syncer) upsertSet(us *pokemontcg.Set) error {
	set := &models.Set{
		ID:                us.ID,
		Name:              us.Name,
		Series:            us.Series,
		PrintedTotal:      us.PrintedTotal,
		Total:             us.Total,
		Legalities:        datatypes.NewJSONType(us.Legalities),
		PtcgoCode:         us.PtcgoCode,
		ReleaseDate:       us.ReleaseDate,
		UpdatedAtUpstream: us.UpdatedAt,
		SymbolURL:         us.Images.Symbol,
		LogoURL:           us.Images.Logo,
		LastUpdated:       time.Now(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(set).Error
}

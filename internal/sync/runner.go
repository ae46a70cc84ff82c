package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/drewfoos/pokeshelf/backend/internal/metrics"
	"github.com/drewfoos/pokeshelf/backend/internal/models"
)

// Progress is the state of one comprehensive catalog sync, threaded
// explicitly through the loop and handed to the caller's report callback.
// No module-level counters.
type Progress struct {
	StartedAt   time.Time
	SetsTotal   int
	SetsDone    int
	SetsFailed  int
	CardsSynced int
	CardsFailed int
	CurrentSet  string
}

// Elapsed is the wall-clock time since the run started.
func (p Progress) Elapsed(now time.Time) time.Duration {
	return now.Sub(p.StartedAt)
}

// ETA projects the remaining duration from the average per-set time so far.
// Zero until at least one set has finished.
func (p Progress) ETA(now time.Time) time.Duration {
	if p.SetsDone == 0 {
		return 0
	}
	perSet := p.Elapsed(now) / time.Duration(p.SetsDone)
	return perSet * time.Duration(p.SetsTotal-p.SetsDone)
}

// RunSummary is the final report of a comprehensive catalog sync.
type RunSummary struct {
	SetsProcessed int           `json:"sets_processed"`
	SetsSucceeded int           `json:"sets_succeeded"`
	SetsFailed    int           `json:"sets_failed"`
	CardsSynced   int           `json:"cards_synced"`
	CardsFailed   int           `json:"cards_failed"`
	FailedSetIDs  []string      `json:"failed_set_ids,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// SyncFullCatalog refreshes all set metadata, then syncs the cards of every
// stored set in release order. One set's failure never stops the rest; its
// ID lands in the summary for follow-up. report, when non-nil, is invoked
// before and after each set with a snapshot of the run's progress.
func (s *Syncer) SyncFullCatalog(ctx context.Context, report func(Progress)) (*RunSummary, error) {
	if _, err := s.SyncSets(ctx); err != nil {
		return nil, fmt.Errorf("set metadata sync failed: %w", err)
	}

	var sets []models.Set
	if err := s.db.Order("release_date DESC").Find(&sets).Error; err != nil {
		return nil, fmt.Errorf("failed to list stored sets: %w", err)
	}

	progress := Progress{StartedAt: time.Now(), SetsTotal: len(sets)}
	summary := &RunSummary{}

	for i := range sets {
		set := &sets[i]
		progress.CurrentSet = set.ID
		if report != nil {
			report(progress)
		}

		res, err := s.SyncSetCards(ctx, set.ID)
		summary.SetsProcessed++
		if res != nil {
			progress.CardsSynced += res.Count
			progress.CardsFailed += res.Failed
			summary.CardsSynced += res.Count
			summary.CardsFailed += res.Failed
		}
		if err != nil {
			if ctx.Err() != nil {
				summary.Duration = time.Since(progress.StartedAt)
				return summary, ctx.Err()
			}
			log.Printf("Catalog sync: set %s failed: %v", set.ID, err)
			progress.SetsFailed++
			summary.SetsFailed++
			summary.FailedSetIDs = append(summary.FailedSetIDs, set.ID)
		} else {
			summary.SetsSucceeded++
		}
		progress.SetsDone++
		if report != nil {
			report(progress)
		}

		if i < len(sets)-1 {
			if err := s.sleep(ctx, s.cfg.PageDelay); err != nil {
				summary.Duration = time.Since(progress.StartedAt)
				return summary, err
			}
		}
	}

	summary.Duration = time.Since(progress.StartedAt)
	metrics.UpdateDatabaseMetrics(s.db)

	log.Printf("Catalog sync: %d sets processed (%d succeeded, %d failed), %d cards in %v",
		summary.SetsProcessed, summary.SetsSucceeded, summary.SetsFailed,
		summary.CardsSynced, summary.Duration.Round(time.Second))
	return summary, nil
}

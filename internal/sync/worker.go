package sync

import (
	"context"
	"log"
	"sync"
	"time"
)

// PriceWorker periodically refreshes pricing for every card referenced by
// the collection.
type PriceWorker struct {
	syncer         *Syncer
	updateInterval time.Duration

	mu sync.RWMutex

	// Stats (reset at midnight)
	cardsUpdatedToday int
	lastUpdateTime    time.Time
	lastStatsDay      time.Time // Track which day the stats are for
	lastError         string
}

type PriceWorkerStatus struct {
	LastUpdateTime    time.Time `json:"last_update_time"`
	NextUpdateTime    time.Time `json:"next_update_time"`
	CardsUpdatedToday int       `json:"cards_updated_today"`
	LastError         string    `json:"last_error,omitempty"`
}

func NewPriceWorker(syncer *Syncer, interval time.Duration) *PriceWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &PriceWorker{
		syncer:         syncer,
		updateInterval: interval,
	}
}

// Start begins the background price update loop. It runs once immediately,
// then on every tick until the context ends.
func (w *PriceWorker) Start(ctx context.Context) {
	log.Printf("Price worker started: refreshing collection prices every %v", w.updateInterval)

	w.runOnce(ctx)

	ticker := time.NewTicker(w.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Price worker stopping...")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *PriceWorker) runOnce(ctx context.Context) {
	w.resetDailyStatsIfNeeded()

	result, err := w.syncer.UpdateCardPrices(ctx, nil)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastUpdateTime = time.Now()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.lastError = err.Error()
		log.Printf("Price worker: refresh failed: %v", err)
		return
	}
	w.lastError = ""
	w.cardsUpdatedToday += result.Count
	if result.Count > 0 {
		log.Printf("Price worker: refreshed %d cards", result.Count)
	}
}

// resetDailyStatsIfNeeded resets cardsUpdatedToday at midnight
func (w *PriceWorker) resetDailyStatsIfNeeded() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if w.lastStatsDay.Before(today) {
		if !w.lastStatsDay.IsZero() {
			log.Printf("Price worker: daily stats reset (previous day: %d cards updated)", w.cardsUpdatedToday)
		}
		w.cardsUpdatedToday = 0
		w.lastStatsDay = today
	}
}

// Status returns the current worker status.
func (w *PriceWorker) Status() PriceWorkerStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return PriceWorkerStatus{
		LastUpdateTime:    w.lastUpdateTime,
		NextUpdateTime:    w.lastUpdateTime.Add(w.updateInterval),
		CardsUpdatedToday: w.cardsUpdatedToday,
		LastError:         w.lastError,
	}
}

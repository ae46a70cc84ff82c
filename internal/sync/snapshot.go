package sync

import (
	"context"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/drewfoos/pokeshelf/backend/internal/metrics"
	"github.com/drewfoos/pokeshelf/backend/internal/models"
)

// SnapshotService records the collection's market value once a day, giving
// the price history a portfolio-level companion series.
type SnapshotService struct {
	db            *gorm.DB
	mu            sync.Mutex
	snapshotHour  int // Hour of day to take snapshot (0-23)
	checkInterval time.Duration
}

func NewSnapshotService(db *gorm.DB) *SnapshotService {
	return &SnapshotService{
		db:            db,
		snapshotHour:  23, // Default: 11 PM
		checkInterval: 15 * time.Minute,
	}
}

// Start begins the background snapshot worker
func (s *SnapshotService) Start(ctx context.Context) {
	log.Println("Snapshot service started: will record daily collection value")

	s.checkAndSnapshot()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Snapshot service stopping...")
			return
		case <-ticker.C:
			s.checkAndSnapshot()
		}
	}
}

func (s *SnapshotService) checkAndSnapshot() {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if s.hasSnapshotForDate(today) {
		return
	}

	// Only take automatic snapshots at or after the configured hour
	if now.Hour() >= s.snapshotHour {
		if err := s.TakeSnapshot(); err != nil {
			log.Printf("Snapshot service: failed to take snapshot: %v", err)
		}
	}
}

func (s *SnapshotService) hasSnapshotForDate(date time.Time) bool {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	var count int64
	s.db.Model(&models.CollectionValueSnapshot{}).
		Where("snapshot_date >= ? AND snapshot_date < ?", startOfDay, endOfDay).
		Count(&count)

	return count > 0
}

// TakeSnapshot records the current collection size and market value.
func (s *SnapshotService) TakeSnapshot() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.CollectionItem
	if err := s.db.Preload("Card").Find(&items).Error; err != nil {
		return err
	}

	now := time.Now()
	snapshotDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	snapshot := models.CollectionValueSnapshot{SnapshotDate: snapshotDate}
	uniqueCards := make(map[string]struct{})
	for _, item := range items {
		snapshot.TotalCards += item.Quantity
		uniqueCards[item.CardID] = struct{}{}
		snapshot.TotalValue += item.Variant.MarketValue(item.Card.TCGPlayer.Data()) * float64(item.Quantity)
	}
	snapshot.UniqueCards = len(uniqueCards)

	if err := s.db.Create(&snapshot).Error; err != nil {
		return err
	}

	metrics.CollectionCardsTotal.Set(float64(snapshot.TotalCards))
	metrics.CollectionValueUSD.Set(snapshot.TotalValue)

	log.Printf("Snapshot service: recorded %d cards (%d unique) worth $%.2f",
		snapshot.TotalCards, snapshot.UniqueCards, snapshot.TotalValue)
	return nil
}

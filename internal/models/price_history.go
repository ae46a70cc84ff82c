package models

import (
	"time"
)

// Finish names used by the upstream TCGPlayer pricing blob.
const (
	FinishNormal               = "normal"
	FinishHolofoil             = "holofoil"
	FinishReverseHolofoil      = "reverseHolofoil"
	FinishFirstEditionHolofoil = "1stEditionHolofoil"
	FinishFirstEditionNormal   = "1stEditionNormal"
)

// PriceHistoryRecord is one append-only market price observation for a card.
// The unique (card_id, run_id) index enforces at most one row per card per
// capture run; a duplicate insert surfaces as gorm.ErrDuplicatedKey and is
// treated as benign by the sync code. Rows are never updated or deleted.
type PriceHistoryRecord struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CardID          string    `json:"card_id" gorm:"not null;index;uniqueIndex:idx_price_history_capture"`
	RunID           string    `json:"run_id" gorm:"not null;uniqueIndex:idx_price_history_capture"`
	CapturedAt      time.Time `json:"captured_at" gorm:"not null;index"`
	Normal          *float64  `json:"normal"`
	Holofoil        *float64  `json:"holofoil"`
	ReverseHolofoil *float64  `json:"reverse_holofoil"`
	FirstEdition    *float64  `json:"first_edition"`
	CreatedAt       time.Time `json:"created_at"`
}

func (PriceHistoryRecord) TableName() string {
	return "price_history"
}

// NewPriceHistoryRecord flattens a pricing snapshot into one history row.
// A finish missing from the snapshot stays NULL. The first-edition column
// takes the 1st Edition Holofoil market when both 1st Edition finishes exist.
func NewPriceHistoryRecord(cardID, runID string, capturedAt time.Time, pricing TCGPlayerPricing) PriceHistoryRecord {
	rec := PriceHistoryRecord{
		CardID:     cardID,
		RunID:      runID,
		CapturedAt: capturedAt,
	}
	if v, ok := pricing.MarketPrice(FinishNormal); ok {
		rec.Normal = &v
	}
	if v, ok := pricing.MarketPrice(FinishHolofoil); ok {
		rec.Holofoil = &v
	}
	if v, ok := pricing.MarketPrice(FinishReverseHolofoil); ok {
		rec.ReverseHolofoil = &v
	}
	if v, ok := pricing.MarketPrice(FinishFirstEditionHolofoil); ok {
		rec.FirstEdition = &v
	} else if v, ok := pricing.MarketPrice(FinishFirstEditionNormal); ok {
		rec.FirstEdition = &v
	}
	return rec
}

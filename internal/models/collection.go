package models

import (
	"time"
)

type Condition string

const (
	ConditionMint      Condition = "M"
	ConditionNearMint  Condition = "NM"
	ConditionExcellent Condition = "EX"
	ConditionGood      Condition = "GD"
	ConditionLightPlay Condition = "LP"
	ConditionPlayed    Condition = "PL"
	ConditionPoor      Condition = "PR"
)

// Variant is the physical finish of an owned card. Values match the finish
// keys of the TCGPlayer pricing blob so collection value lookups are direct.
type Variant string

const (
	VariantNormal          Variant = "normal"
	VariantHolofoil        Variant = "holofoil"
	VariantReverseHolofoil Variant = "reverseHolofoil"
	VariantFirstEdition    Variant = "firstEdition"
)

// AllVariants returns all valid collection variants.
func AllVariants() []Variant {
	return []Variant{
		VariantNormal,
		VariantHolofoil,
		VariantReverseHolofoil,
		VariantFirstEdition,
	}
}

// MarketValue returns the current market price for this variant of a card,
// falling back to the normal finish and then any priced finish so a card
// with pricing data never values at zero.
func (v Variant) MarketValue(p TCGPlayerPricing) float64 {
	switch v {
	case VariantHolofoil:
		if m, ok := p.MarketPrice(FinishHolofoil); ok && m > 0 {
			return m
		}
	case VariantReverseHolofoil:
		if m, ok := p.MarketPrice(FinishReverseHolofoil); ok && m > 0 {
			return m
		}
	case VariantFirstEdition:
		if m, ok := p.MarketPrice(FinishFirstEditionHolofoil); ok && m > 0 {
			return m
		}
		if m, ok := p.MarketPrice(FinishFirstEditionNormal); ok && m > 0 {
			return m
		}
	}
	if m, ok := p.MarketPrice(FinishNormal); ok && m > 0 {
		return m
	}
	for _, r := range p.Prices {
		if r.Market > 0 {
			return r.Market
		}
	}
	return 0
}

// CollectionItem is one owned stack of a card. Items with the same card,
// variant, and condition merge into a single stack.
type CollectionItem struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CardID    string    `json:"card_id" gorm:"not null;index;uniqueIndex:idx_collection_stack"`
	Card      Card      `json:"card" gorm:"foreignKey:CardID"`
	Quantity  int       `json:"quantity" gorm:"default:1"`
	Variant   Variant   `json:"variant" gorm:"default:'normal';uniqueIndex:idx_collection_stack"`
	Condition Condition `json:"condition" gorm:"default:'NM';uniqueIndex:idx_collection_stack"`
	Notes     string    `json:"notes"`
	AddedAt   time.Time `json:"added_at"`
}

type CollectionStats struct {
	TotalCards      int     `json:"total_cards"`
	UniqueCards     int     `json:"unique_cards"`
	SetsRepresented int     `json:"sets_represented"`
	TotalValue      float64 `json:"total_value"`
}

type AddToCollectionRequest struct {
	CardID    string    `json:"card_id" binding:"required"`
	Quantity  int       `json:"quantity"`
	Variant   Variant   `json:"variant"`
	Condition Condition `json:"condition"`
	Notes     string    `json:"notes"`
}

type UpdateCollectionRequest struct {
	Quantity  *int       `json:"quantity"`
	Variant   *Variant   `json:"variant"`
	Condition *Condition `json:"condition"`
	Notes     *string    `json:"notes"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// UnknownRarity is stored when the upstream payload carries no rarity.
// The rarity column is never empty.
const UnknownRarity = "Unknown"

// PriceRange holds the per-finish price points reported by TCGPlayer.
type PriceRange struct {
	Low       float64 `json:"low,omitempty"`
	Mid       float64 `json:"mid,omitempty"`
	High      float64 `json:"high,omitempty"`
	Market    float64 `json:"market,omitempty"`
	DirectLow float64 `json:"directLow,omitempty"`
}

// TCGPlayerPricing is the nested pricing snapshot carried on a card, keyed by
// finish name ("normal", "holofoil", ...). It is overwritten wholesale on
// every sync or price refresh, never merged field by field.
type TCGPlayerPricing struct {
	URL       string                `json:"url,omitempty"`
	UpdatedAt string                `json:"updatedAt,omitempty"`
	Prices    map[string]PriceRange `json:"prices,omitempty"`
}

// HasPrices reports whether at least one finish has price data.
func (p TCGPlayerPricing) HasPrices() bool {
	return len(p.Prices) > 0
}

// MarketPrice returns the market price for a finish, or false when the finish
// is not present in the snapshot.
func (p TCGPlayerPricing) MarketPrice(finish string) (float64, bool) {
	r, ok := p.Prices[finish]
	if !ok {
		return 0, false
	}
	return r.Market, true
}

// Card mirrors one upstream card. The upstream ID (conventionally
// "{setId}-{number}", treated as opaque) is the primary key. SetID and
// SetName are denormalized so card listings never need a join.
type Card struct {
	ID                     string                               `json:"id" gorm:"primaryKey"`
	Name                   string                               `json:"name" gorm:"not null;index"`
	Supertype              string                               `json:"supertype"`
	Subtypes               datatypes.JSONSlice[string]          `json:"subtypes"`
	HP                     string                               `json:"hp" gorm:"column:hp"`
	Types                  datatypes.JSONSlice[string]          `json:"types"`
	SetID                  string                               `json:"set_id" gorm:"index"`
	SetName                string                               `json:"set_name"`
	Number                 string                               `json:"number"` // collector number, may be non-numeric ("SWSH001")
	Artist                 string                               `json:"artist"`
	Rarity                 string                               `json:"rarity" gorm:"not null;default:'Unknown'"`
	NationalPokedexNumbers datatypes.JSONSlice[int]             `json:"national_pokedex_numbers"`
	ImageSmall             string                               `json:"image_small"`
	ImageLarge             string                               `json:"image_large"`
	TCGPlayer              datatypes.JSONType[TCGPlayerPricing] `json:"tcgplayer" gorm:"column:tcgplayer"`
	LastUpdated            time.Time                            `json:"last_updated"`
	CreatedAt              time.Time                            `json:"created_at"`
	UpdatedAt              time.Time                            `json:"updated_at"`
}

type CardSearchResult struct {
	Cards      []Card `json:"cards"`
	TotalCount int    `json:"total_count"`
	HasMore    bool   `json:"has_more"`
}

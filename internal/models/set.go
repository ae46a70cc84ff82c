package models

import (
	"time"

	"gorm.io/datatypes"
)

// Set mirrors one upstream Pokemon TCG set. The upstream ID is reused as the
// primary key, so upserts are idempotent and a set is never stored twice.
type Set struct {
	ID                string                               `json:"id" gorm:"primaryKey"`
	Name              string                               `json:"name" gorm:"not null;index"`
	Series            string                               `json:"series" gorm:"index"`
	PrintedTotal      int                                  `json:"printed_total"`
	Total             int                                  `json:"total"`
	Legalities        datatypes.JSONType[map[string]string] `json:"legalities"`
	PtcgoCode         string                               `json:"ptcgo_code"`
	ReleaseDate       string                               `json:"release_date" gorm:"index"` // upstream format "2006/01/02"
	UpdatedAtUpstream string                               `json:"updated_at_upstream"`
	SymbolURL         string                               `json:"symbol_url"`
	LogoURL           string                               `json:"logo_url"`
	LastUpdated       time.Time                            `json:"last_updated"`
	CreatedAt         time.Time                            `json:"created_at"`
	UpdatedAt         time.Time                            `json:"updated_at"`
}

package models

import "testing"

func TestVariantMarketValue(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		prices  map[string]float64
		want    float64
	}{
		{"direct finish match", VariantHolofoil, map[string]float64{FinishHolofoil: 50, FinishNormal: 3}, 50},
		{"reverse holofoil", VariantReverseHolofoil, map[string]float64{FinishReverseHolofoil: 7}, 7},
		{"first edition prefers holofoil", VariantFirstEdition, map[string]float64{FinishFirstEditionHolofoil: 400, FinishFirstEditionNormal: 90}, 400},
		{"first edition normal fallback", VariantFirstEdition, map[string]float64{FinishFirstEditionNormal: 90}, 90},
		{"falls back to normal", VariantHolofoil, map[string]float64{FinishNormal: 3}, 3},
		{"falls back to any priced finish", VariantNormal, map[string]float64{FinishHolofoil: 50}, 50},
		{"no pricing at all", VariantNormal, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.variant.MarketValue(pricing(tt.prices)); got != tt.want {
				t.Errorf("MarketValue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllVariants(t *testing.T) {
	if got := len(AllVariants()); got != 4 {
		t.Errorf("AllVariants() returned %d variants, want 4", got)
	}
}

func TestHasPrices(t *testing.T) {
	if (TCGPlayerPricing{}).HasPrices() {
		t.Error("empty pricing reported HasPrices true")
	}
	if !pricing(map[string]float64{FinishNormal: 1}).HasPrices() {
		t.Error("priced snapshot reported HasPrices false")
	}
}

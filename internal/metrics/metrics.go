// Package metrics provides Prometheus metrics for the PokeShelf backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// Upstream API Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeshelf_upstream_requests_total",
			Help: "Total requests to the Pokemon TCG API by outcome",
		},
		[]string{"outcome"}, // "ok", "rate_limited", "error", "network_error"
	)

	UpstreamRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeshelf_upstream_retries_total",
			Help: "Total retried requests to the Pokemon TCG API",
		},
	)

	// Catalog Sync Metrics
	SetsSyncedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeshelf_sets_synced_total",
			Help: "Total set upserts that succeeded",
		},
	)

	SetSyncFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeshelf_set_sync_failures_total",
			Help: "Total set upserts that failed",
		},
	)

	CardsSyncedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeshelf_cards_synced_total",
			Help: "Total card upserts that succeeded",
		},
	)

	CardSyncFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeshelf_card_sync_failures_total",
			Help: "Total card upserts that failed",
		},
	)

	SetSyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokeshelf_set_sync_duration_seconds",
			Help:    "Time taken to sync all cards of one set",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// Price History Metrics
	PriceSnapshotsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeshelf_price_snapshots_total",
			Help: "Total price history rows appended",
		},
	)

	DuplicatePriceSnapshotsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeshelf_duplicate_price_snapshots_total",
			Help: "Price history inserts suppressed as duplicates within a capture run",
		},
	)

	PricesRefreshedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeshelf_prices_refreshed_total",
			Help: "Total cards whose stored pricing was refreshed",
		},
	)

	PriceBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokeshelf_price_batch_duration_seconds",
			Help:    "Time taken to process a price refresh run",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Database Metrics
	SetDatabaseSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokeshelf_set_database_size",
			Help: "Number of sets in the database",
		},
	)

	CardDatabaseSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokeshelf_card_database_size",
			Help: "Number of unique cards in the database",
		},
	)

	// Collection Metrics
	CollectionCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokeshelf_collection_cards_total",
			Help: "Total number of cards in the collection",
		},
	)

	CollectionValueUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokeshelf_collection_value_usd",
			Help: "Total estimated value of the collection in USD",
		},
	)
)

// UpdateDatabaseMetrics refreshes the database size gauges.
func UpdateDatabaseMetrics(db *gorm.DB) {
	var sets, cards int64
	db.Table("sets").Count(&sets)
	db.Table("cards").Count(&cards)
	SetDatabaseSize.Set(float64(sets))
	CardDatabaseSize.Set(float64(cards))
}

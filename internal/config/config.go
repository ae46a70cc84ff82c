// Package config loads runtime configuration from the environment. A .env
// file is honored when present so the standalone sync tools and the server
// share one way of picking up the upstream API key and tuning knobs.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBPath      string
	APIKey      string // Pokemon TCG API key; optional, unauthenticated calls are throttled harder
	CORSOrigins []string

	// Upstream client tuning
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	RetryWait         time.Duration

	// Sync pacing. These were tuned empirically against the upstream
	// provider's undocumented limits, so they are configuration rather
	// than constants.
	PageSize        int
	SetPageSize     int
	PageDelay       time.Duration
	CardDelay       time.Duration
	CardDelayEvery  int
	SetImportDelay  time.Duration
	RateLimitSleep  time.Duration
	MaxPageFailures int

	// Price refresh
	PriceBatchSize      int
	BatchDelay          time.Duration
	PriceUpdateInterval time.Duration
}

// Load reads the environment (plus an optional .env file) and applies
// defaults for anything unset.
func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DBPath:      getEnv("DB_PATH", "./pokeshelf.db"),
		APIKey:      os.Getenv("POKEMON_TCG_API_KEY"),
		CORSOrigins: splitEnv("CORS_ALLOWED_ORIGINS"),

		RequestsPerSecond: getEnvFloat("UPSTREAM_REQUESTS_PER_SECOND", 2),
		Burst:             getEnvInt("UPSTREAM_BURST", 1),
		MaxRetries:        getEnvInt("UPSTREAM_MAX_RETRIES", 3),
		RetryWait:         getEnvDuration("UPSTREAM_RETRY_WAIT", time.Second),

		PageSize:        getEnvInt("SYNC_PAGE_SIZE", 250),
		SetPageSize:     getEnvInt("SYNC_SET_PAGE_SIZE", 250),
		PageDelay:       getEnvDuration("SYNC_PAGE_DELAY", 2*time.Second),
		CardDelay:       getEnvDuration("SYNC_CARD_DELAY", 100*time.Millisecond),
		CardDelayEvery:  getEnvInt("SYNC_CARD_DELAY_EVERY", 10),
		SetImportDelay:  getEnvDuration("SYNC_SET_IMPORT_DELAY", 30*time.Second),
		RateLimitSleep:  getEnvDuration("SYNC_RATE_LIMIT_SLEEP", time.Minute),
		MaxPageFailures: getEnvInt("SYNC_MAX_PAGE_FAILURES", 10),

		PriceBatchSize:      getEnvInt("PRICE_BATCH_SIZE", 50),
		BatchDelay:          getEnvDuration("PRICE_BATCH_DELAY", 2*time.Second),
		PriceUpdateInterval: getEnvDuration("PRICE_UPDATE_INTERVAL", 24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("Config: invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Config: invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}

func splitEnv(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package sync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/drewfoos/pokeshelf/backend/internal/config"
	"github.com/drewfoos/pokeshelf/backend/internal/models"
	"github.com/drewfoos/pokeshelf/backend/internal/pokemontcg"
)

// fakeUpstream is an in-process stand-in for api.pokemontcg.io serving the
// three endpoints the sync engine uses, with pagination and the two query
// shapes it issues (set.id:X and id:A OR id:B).
type fakeUpstream struct {
	mu       sync.Mutex
	sets     []pokemontcg.Set
	cards    map[string][]pokemontcg.Card
	requests []*url.URL

	// intercept, when set, gets first crack at every request. Returning
	// true means the request was fully handled.
	intercept func(w http.ResponseWriter, r *http.Request) bool

	srv *httptest.Server
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	f := &fakeUpstream{cards: make(map[string][]pokemontcg.Card)}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeUpstream) addSet(s pokemontcg.Set, cards ...pokemontcg.Card) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets = append(f.sets, s)
	f.cards[s.ID] = cards
}

func (f *fakeUpstream) requestsTo(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.requests {
		if u.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeUpstream) cardQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var queries []string
	for _, u := range f.requests {
		if u.Path == "/cards" {
			queries = append(queries, u.Query().Get("q"))
		}
	}
	return queries
}

func (f *fakeUpstream) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL)
	intercept := f.intercept
	f.mu.Unlock()

	if intercept != nil && intercept(w, r) {
		return
	}

	switch {
	case r.URL.Path == "/sets":
		f.mu.Lock()
		sets := f.sets
		f.mu.Unlock()
		writeJSON(w, pokemontcg.SetList{
			Data: sets, Page: 1, PageSize: len(sets), Count: len(sets), TotalCount: len(sets),
		})

	case strings.HasPrefix(r.URL.Path, "/sets/"):
		id := strings.TrimPrefix(r.URL.Path, "/sets/")
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, s := range f.sets {
			if s.ID == id {
				writeJSON(w, struct {
					Data pokemontcg.Set `json:"data"`
				}{s})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"set not found","code":404}}`))

	case r.URL.Path == "/cards":
		q := r.URL.Query().Get("q")
		page := atoiDefault(r.URL.Query().Get("page"), 1)
		pageSize := atoiDefault(r.URL.Query().Get("pageSize"), 250)

		var all []pokemontcg.Card
		if setID, ok := strings.CutPrefix(q, "set.id:"); ok {
			f.mu.Lock()
			all = f.cards[setID]
			f.mu.Unlock()
		} else {
			for _, part := range strings.Split(q, " OR ") {
				if c, ok := f.cardByID(strings.TrimPrefix(part, "id:")); ok {
					all = append(all, c)
				}
			}
		}

		start := (page - 1) * pageSize
		if start > len(all) {
			start = len(all)
		}
		end := start + pageSize
		if end > len(all) {
			end = len(all)
		}
		pageData := all[start:end]
		writeJSON(w, pokemontcg.CardList{
			Data: pageData, Page: page, PageSize: pageSize, Count: len(pageData), TotalCount: len(all),
		})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeUpstream) cardByID(id string) (pokemontcg.Card, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cards := range f.cards {
		for _, c := range cards {
			if c.ID == id {
				return c, true
			}
		}
	}
	return pokemontcg.Card{}, false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func atoiDefault(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sync_test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Set{},
		&models.Card{},
		&models.PriceHistoryRecord{},
		&models.CollectionItem{},
		&models.CollectionValueSnapshot{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// testConfig uses near-zero pacing so tests run fast.
func testConfig() *config.Config {
	return &config.Config{
		RequestsPerSecond: 1000,
		Burst:             100,
		MaxRetries:        1,
		RetryWait:         time.Millisecond,

		PageSize:        250,
		SetPageSize:     250,
		PageDelay:       0,
		CardDelay:       0,
		CardDelayEvery:  0,
		SetImportDelay:  0,
		RateLimitSleep:  time.Millisecond,
		MaxPageFailures: 3,

		PriceBatchSize:      50,
		BatchDelay:          0,
		PriceUpdateInterval: time.Hour,
	}
}

func newTestSyncer(t *testing.T, f *fakeUpstream, cfg *config.Config) (*Syncer, *gorm.DB) {
	client := pokemontcg.NewClient(pokemontcg.Config{
		BaseURL:           f.srv.URL,
		MaxRetries:        cfg.MaxRetries,
		RetryWait:         cfg.RetryWait,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
	db := newTestDB(t)
	return New(db, client, cfg), db
}

// upstreamCard builds a card payload, priced at market for the given finish
// when market > 0.
func upstreamCard(id, setID, name, rarity, finish string, market float64) pokemontcg.Card {
	c := pokemontcg.Card{
		ID:        id,
		Name:      name,
		Supertype: "Pokémon",
		Number:    strings.TrimPrefix(id, setID+"-"),
		Rarity:    rarity,
		Set:       pokemontcg.CardSet{ID: setID, Name: setID},
	}
	if market > 0 {
		c.TCGPlayer = &pokemontcg.TCGPlayer{
			URL:       "https://prices.pokemontcg.io/tcgplayer/" + id,
			UpdatedAt: "2026/08/30",
			Prices: map[string]pokemontcg.Prices{
				finish: {Low: market / 2, Mid: market, High: market * 2, Market: market},
			},
		}
	}
	return c
}

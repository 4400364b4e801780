package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ad714/bookmirror/internal/domain"
)

type fakeCatalogSource struct {
	questions []domain.Market
	byID      map[string]domain.Market
	calls     int
}

func (f *fakeCatalogSource) Questions(ctx context.Context) ([]domain.Market, error) {
	f.calls++
	return f.questions, nil
}

func (f *fakeCatalogSource) Question(ctx context.Context, id string) (domain.Market, error) {
	if m, ok := f.byID[id]; ok {
		return m, nil
	}
	return domain.Market{}, domain.ErrNotFound
}

type memMarketStore struct {
	markets map[string]domain.Market
	upserts int
}

func newMemMarketStore() *memMarketStore {
	return &memMarketStore{markets: make(map[string]domain.Market)}
}

func (s *memMarketStore) UpsertBatch(ctx context.Context, markets []domain.Market) error {
	s.upserts++
	for _, m := range markets {
		s.markets[m.QuestionID] = m
	}
	return nil
}

func (s *memMarketStore) GetByID(ctx context.Context, id string) (domain.Market, error) {
	m, ok := s.markets[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (s *memMarketStore) ListLive(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	out := make([]domain.Market, 0, len(s.markets))
	for _, m := range s.markets {
		out = append(out, m)
	}
	return out, nil
}

func (s *memMarketStore) Count(ctx context.Context) (int64, error) {
	return int64(len(s.markets)), nil
}

type memMarketCache struct {
	markets map[string]domain.Market
	hits    int
}

func newMemMarketCache() *memMarketCache {
	return &memMarketCache{markets: make(map[string]domain.Market)}
}

func (c *memMarketCache) Set(ctx context.Context, m domain.Market) error {
	c.markets[m.QuestionID] = m
	return nil
}

func (c *memMarketCache) Get(ctx context.Context, id string) (domain.Market, error) {
	m, ok := c.markets[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	c.hits++
	return m, nil
}

func (c *memMarketCache) Invalidate(ctx context.Context, id string) error {
	delete(c.markets, id)
	return nil
}

func TestRefreshFiltersAndPersists(t *testing.T) {
	keep := liveMarket("keep", time.Hour)
	junk := liveMarket("junk", time.Hour)
	junk.Category = "crypto 5 min"

	src := &fakeCatalogSource{questions: []domain.Market{keep, junk}}
	store := newMemMarketStore()
	cache := newMemMarketCache()
	svc := NewMarketService(src, store, cache, nil, slog.New(slog.DiscardHandler))

	got, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(got) != 1 || got[0].QuestionID != "keep" {
		t.Fatalf("refreshed = %+v", got)
	}
	if _, ok := store.markets["keep"]; !ok {
		t.Fatal("kept question not persisted")
	}
	if _, ok := store.markets["junk"]; ok {
		t.Fatal("excluded question persisted")
	}
	if _, ok := cache.markets["keep"]; !ok {
		t.Fatal("kept question not cached")
	}
}

func TestGetReadsThroughLayers(t *testing.T) {
	stored := liveMarket("stored", time.Hour)
	upstream := liveMarket("upstream", time.Hour)

	src := &fakeCatalogSource{byID: map[string]domain.Market{"upstream": upstream}}
	store := newMemMarketStore()
	store.markets["stored"] = stored
	cache := newMemMarketCache()
	svc := NewMarketService(src, store, cache, nil, slog.New(slog.DiscardHandler))

	// Store hit backfills the cache.
	m, err := svc.Get(context.Background(), "stored")
	if err != nil || m.QuestionID != "stored" {
		t.Fatalf("Get(stored) = %+v, %v", m, err)
	}
	if _, ok := cache.markets["stored"]; !ok {
		t.Fatal("store hit did not backfill cache")
	}

	// Second read is served from cache.
	if _, err := svc.Get(context.Background(), "stored"); err != nil {
		t.Fatalf("Get(stored) again: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("cache hits = %d, want 1", cache.hits)
	}

	// Unknown locally, found upstream.
	m, err = svc.Get(context.Background(), "upstream")
	if err != nil || m.QuestionID != "upstream" {
		t.Fatalf("Get(upstream) = %+v, %v", m, err)
	}

	// Not found anywhere.
	if _, err := svc.Get(context.Background(), "missing"); err == nil {
		t.Fatal("Get(missing) succeeded")
	}
}

type memBookCache struct {
	books map[string]domain.OutcomeBook
}

func (c *memBookCache) SetBook(ctx context.Context, b domain.OutcomeBook) error {
	c.books[b.MarketID] = b
	return nil
}

func (c *memBookCache) GetBook(ctx context.Context, id string) (domain.OutcomeBook, error) {
	b, ok := c.books[id]
	if !ok {
		return domain.OutcomeBook{}, domain.ErrNotFound
	}
	return b, nil
}

func TestGroupTiersMergesSubQuestions(t *testing.T) {
	books := &memBookCache{books: map[string]domain.OutcomeBook{
		"yes-a": {MarketID: "yes-a", Bids: []domain.PriceLevel{{Side: domain.SideBid, PriceTicks: 500, Size: 300}}},
		"yes-b": {MarketID: "yes-b", Bids: []domain.PriceLevel{{Side: domain.SideBid, PriceTicks: 500, Size: 2500}}},
	}}
	svc := NewMarketService(nil, newMemMarketStore(), nil, books, slog.New(slog.DiscardHandler))

	a := liveMarket("a", time.Hour)
	a.ParentID = "ev-1"
	a.YesMarketID = "yes-a"
	b := liveMarket("b", time.Hour)
	b.ParentID = "ev-1"
	b.YesMarketID = "yes-b"
	c := liveMarket("c", time.Hour)
	c.YesMarketID = "missing"

	tiers := svc.GroupTiers(context.Background(), []domain.Market{a, b, c})

	// The event takes the best tier of any sub-question.
	if tiers["ev-1"] != domain.TierHigh {
		t.Errorf("ev-1 tier = %v, want high", tiers["ev-1"])
	}
	if tiers["c"] != domain.TierNone {
		t.Errorf("c tier = %v, want none", tiers["c"])
	}
}

func TestGroupTiersCombinesOutcomeBooks(t *testing.T) {
	// 300 on each outcome book straddles the LOW/MED boundary: the
	// question's badge classifies the combined 600, not max(LOW, LOW).
	books := &memBookCache{books: map[string]domain.OutcomeBook{
		"yes-a": {MarketID: "yes-a", Bids: []domain.PriceLevel{{Side: domain.SideBid, PriceTicks: 500, Size: 300}}},
		"no-a":  {MarketID: "no-a", Bids: []domain.PriceLevel{{Side: domain.SideBid, PriceTicks: 500, Size: 300}}},
	}}
	svc := NewMarketService(nil, newMemMarketStore(), nil, books, slog.New(slog.DiscardHandler))

	a := liveMarket("a", time.Hour)
	a.YesMarketID = "yes-a"
	a.NoMarketID = "no-a"

	tiers := svc.GroupTiers(context.Background(), []domain.Market{a})

	if tiers["a"] != domain.TierMed {
		t.Errorf("combined 600 size tier = %v, want med", tiers["a"])
	}
}

// Package service holds the application services that sit between the
// transport layer and the platform clients, stores, and caches.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ad714/bookmirror/internal/book"
	"github.com/ad714/bookmirror/internal/domain"
)

// CatalogSource is the upstream question catalog.
type CatalogSource interface {
	Questions(ctx context.Context) ([]domain.Market, error)
	Question(ctx context.Context, id string) (domain.Market, error)
}

// MarketService serves the filtered question catalog: cache first, then
// the persistent store, then the upstream API.
type MarketService struct {
	source CatalogSource
	store  domain.MarketStore
	cache  domain.MarketCache // may be nil
	books  domain.BookCache   // may be nil
	logger *slog.Logger
}

// NewMarketService creates a MarketService. Store is required; cache and
// books are optional read-through layers.
func NewMarketService(source CatalogSource, store domain.MarketStore, cache domain.MarketCache, books domain.BookCache, logger *slog.Logger) *MarketService {
	return &MarketService{
		source: source,
		store:  store,
		cache:  cache,
		books:  books,
		logger: logger.With(slog.String("component", "market_service")),
	}
}

// Refresh pulls the full upstream catalog, filters and deduplicates it,
// and writes the surviving questions to the store and cache. It returns
// the filtered set.
func (s *MarketService) Refresh(ctx context.Context) ([]domain.Market, error) {
	raw, err := s.source.Questions(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: refresh catalog: %w", err)
	}

	filtered := FilterQuestions(raw, time.Now().UTC())

	if err := s.store.UpsertBatch(ctx, filtered); err != nil {
		return nil, fmt.Errorf("service: persist catalog: %w", err)
	}

	if s.cache != nil {
		for _, m := range filtered {
			if err := s.cache.Set(ctx, m); err != nil {
				s.logger.WarnContext(ctx, "market cache write failed",
					slog.String("question_id", m.QuestionID),
					slog.String("error", err.Error()),
				)
				break
			}
		}
	}

	s.logger.InfoContext(ctx, "catalog refreshed",
		slog.Int("fetched", len(raw)),
		slog.Int("kept", len(filtered)),
	)

	return filtered, nil
}

// Get returns one question by ID: cache, then store, then upstream. An
// upstream hit backfills the cache.
func (s *MarketService) Get(ctx context.Context, id string) (domain.Market, error) {
	if s.cache != nil {
		if m, err := s.cache.Get(ctx, id); err == nil {
			return m, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "market cache read failed",
				slog.String("question_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	m, err := s.store.GetByID(ctx, id)
	if err == nil {
		s.cacheSet(ctx, m)
		return m, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Market{}, fmt.Errorf("service: get market %s: %w", id, err)
	}

	m, err = s.source.Question(ctx, id)
	if err != nil {
		return domain.Market{}, fmt.Errorf("service: get market %s: %w", id, err)
	}
	s.cacheSet(ctx, m)
	return m, nil
}

// ListLive returns the stored live catalog page.
func (s *MarketService) ListLive(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	markets, err := s.store.ListLive(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("service: list markets: %w", err)
	}
	return markets, nil
}

// Count returns the number of stored live questions.
func (s *MarketService) Count(ctx context.Context) (int64, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("service: count markets: %w", err)
	}
	return n, nil
}

// GroupTiers classifies the cached books of the given questions and
// merges the per-question tiers by parent event, taking the best tier of
// any sub-question. Questions with no cached book contribute no tier.
func (s *MarketService) GroupTiers(ctx context.Context, markets []domain.Market) map[string]domain.LiquidityTier {
	out := make(map[string]domain.LiquidityTier, len(markets))
	if s.books == nil {
		return out
	}

	for _, m := range markets {
		// A question's own tier is classified over its combined Yes+No
		// levels; size split across the two outcome books still counts
		// toward one total.
		var combined []domain.PriceLevel
		for _, id := range []string{m.YesMarketID, m.NoMarketID} {
			if id == "" {
				continue
			}
			b, err := s.books.GetBook(ctx, id)
			if err != nil {
				continue
			}
			combined = append(combined, b.Levels()...)
		}
		tier := book.Classify(combined)

		key := m.GroupKey()
		out[key] = book.MergeTiers(out[key], tier)
	}

	return out
}

func (s *MarketService) cacheSet(ctx context.Context, m domain.Market) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, m); err != nil {
		s.logger.WarnContext(ctx, "market cache write failed",
			slog.String("question_id", m.QuestionID),
			slog.String("error", err.Error()),
		)
	}
}

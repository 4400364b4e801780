package domain

import "context"

// ListOpts carries standard pagination parameters.
type ListOpts struct {
	Limit  int
	Offset int
}

// MarketStore persists the synced Fliq question catalog. Only catalog
// metadata is stored; simulated trades are never persisted.
type MarketStore interface {
	UpsertBatch(ctx context.Context, markets []Market) error
	GetByID(ctx context.Context, questionID string) (Market, error)
	ListLive(ctx context.Context, opts ListOpts) ([]Market, error)
	Count(ctx context.Context) (int64, error)
}

// MatchStore persists cross-venue match results. Each matcher run
// replaces the previous result set.
type MatchStore interface {
	Replace(ctx context.Context, matches []MarketMatch) error
	List(ctx context.Context, minScore float64, opts ListOpts) ([]MarketMatch, error)
}

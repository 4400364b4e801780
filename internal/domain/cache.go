package domain

import "context"

// MarketCache provides fast question metadata lookups in front of the
// persistent store.
type MarketCache interface {
	Set(ctx context.Context, market Market) error
	Get(ctx context.Context, questionID string) (Market, error)
	Invalidate(ctx context.Context, questionID string) error
}

// BookCache stores the latest raw outcome books keyed by outcome market
// ID. Snapshots are whole-book replacements; there are no incremental
// level updates in the polling model.
type BookCache interface {
	SetBook(ctx context.Context, book OutcomeBook) error
	GetBook(ctx context.Context, marketID string) (OutcomeBook, error)
}

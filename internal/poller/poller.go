// Package poller drives the periodic refresh of the selected question's
// two outcome books. It owns the only I/O loop in the engine; every
// downstream computation is a pure function over the snapshot it
// produces.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ad714/bookmirror/internal/book"
	"github.com/ad714/bookmirror/internal/domain"
)

// State is the polling controller's lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StatePolling  State = "polling"
	StatePaused   State = "paused"
)

// DefaultInterval is the fixed delay between polls of a liquid market.
const DefaultInterval = 2 * time.Second

// BookSource fetches the raw level lists for one outcome market.
type BookSource interface {
	PriceLevels(ctx context.Context, marketID string, outcome domain.Outcome) (domain.OutcomeBook, error)
}

// Status is the observable poller state exposed to the presentation
// layer.
type Status struct {
	State         State                `json:"state"`
	QuestionID    string               `json:"question_id,omitempty"`
	Outcome       domain.Outcome       `json:"outcome,omitempty"`
	CurrentTier   domain.LiquidityTier `json:"-"`
	TierName      string               `json:"tier"`
	LastUpdatedAt time.Time            `json:"last_updated_at"`
	IsPolling     bool                 `json:"is_polling"`
}

// Controller is the polling state machine for the currently selected
// question. Cancellation is expressed through an epoch counter
// incremented on every selection: in-flight fetches are tagged with the
// epoch they were issued under and their results are discarded when it
// no longer matches, so a stale response can never mutate state for a
// no-longer-selected market.
type Controller struct {
	source   BookSource
	books    domain.BookCache // optional write-through, may be nil
	interval time.Duration
	onUpdate func(domain.BookSnapshot) // optional broadcast hook
	logger   *slog.Logger

	mu          sync.Mutex
	epoch       uint64
	state       State
	market      domain.Market
	outcome     domain.Outcome
	autoRefresh bool
	snapshot    *domain.BookSnapshot
	lastUpdated time.Time
	timer       *time.Timer
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval overrides the fixed polling interval.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithBookCache adds write-through of fetched outcome books.
func WithBookCache(cache domain.BookCache) Option {
	return func(c *Controller) { c.books = cache }
}

// WithUpdateHook registers a callback invoked with every fresh snapshot,
// after it has been installed.
func WithUpdateHook(fn func(domain.BookSnapshot)) Option {
	return func(c *Controller) { c.onUpdate = fn }
}

// New creates an idle Controller polling from the given source.
func New(source BookSource, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		source:   source,
		interval: DefaultInterval,
		state:    StateIdle,
		logger:   logger.With(slog.String("component", "poller")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Select switches the controller to a new question and trading outcome.
// Any pending scheduled fetch is cancelled, previously displayed levels
// are cleared immediately, and a fresh paired fetch starts.
func (c *Controller) Select(ctx context.Context, market domain.Market, outcome domain.Outcome) {
	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.stopTimerLocked()
	c.market = market
	c.outcome = outcome
	c.snapshot = nil // no stale display for the previous selection
	c.autoRefresh = true
	c.state = StateFetching
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "market selected",
		slog.String("question_id", market.QuestionID),
		slog.String("outcome", string(outcome)),
		slog.Uint64("epoch", epoch),
	)

	go c.fetch(ctx, epoch)
}

// Resume re-enables auto-refresh from the Paused state and performs one
// immediate fetch. It is a no-op in any other state.
func (c *Controller) Resume(ctx context.Context) {
	c.mu.Lock()
	if c.state != StatePaused {
		c.mu.Unlock()
		return
	}
	c.autoRefresh = true
	c.state = StateFetching
	epoch := c.epoch
	questionID := c.market.QuestionID
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "polling resumed",
		slog.String("question_id", questionID),
	)

	go c.fetch(ctx, epoch)
}

// Stop cancels any pending fetch and returns the controller to Idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.stopTimerLocked()
	c.state = StateIdle
	c.autoRefresh = false
	c.snapshot = nil
}

// Status returns the observable poller state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	tier := domain.TierNone
	if c.snapshot != nil {
		tier = c.snapshot.Tier
	}
	return Status{
		State:         c.state,
		QuestionID:    c.market.QuestionID,
		Outcome:       c.outcome,
		CurrentTier:   tier,
		TierName:      tier.String(),
		LastUpdatedAt: c.lastUpdated,
		IsPolling:     c.state == StatePolling || c.state == StateFetching,
	}
}

// Snapshot returns a copy of the latest installed snapshot, or false if
// none exists for the current selection.
func (c *Controller) Snapshot() (domain.BookSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return domain.BookSnapshot{}, false
	}
	return *c.snapshot, true
}

// fetch issues the paired Yes/No book fetch for the given epoch, joins
// both halves, and installs the resulting snapshot if the epoch is still
// current.
func (c *Controller) fetch(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	market := c.market
	outcome := c.outcome
	c.mu.Unlock()

	// Both requests go out simultaneously and are joined before any
	// downstream computation, so a Yes book from one cycle is never
	// crossed with a No book from another.
	var yesBook, noBook domain.OutcomeBook
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		yesBook, err = c.source.PriceLevels(gctx, market.YesMarketID, domain.OutcomeYes)
		return err
	})
	g.Go(func() error {
		var err error
		noBook, err = c.source.PriceLevels(gctx, market.NoMarketID, domain.OutcomeNo)
		return err
	})

	if err := g.Wait(); err != nil {
		c.onFetchError(ctx, epoch, market.QuestionID, err)
		return
	}

	snap := buildSnapshot(market, outcome, yesBook, noBook)

	c.mu.Lock()
	if epoch != c.epoch {
		// The selection changed while the fetch was in flight; the
		// response belongs to a previous market and is dropped.
		c.mu.Unlock()
		return
	}

	c.snapshot = &snap
	c.lastUpdated = snap.FetchedAt

	if yesBook.Empty() && noBook.Empty() {
		// Illiquid markets do not warrant continuous polling.
		c.autoRefresh = false
		c.state = StatePaused
		c.mu.Unlock()
		c.logger.InfoContext(ctx, "book empty, polling paused",
			slog.String("question_id", market.QuestionID),
		)
	} else {
		if c.autoRefresh {
			c.state = StatePolling
			c.scheduleLocked(ctx, epoch)
		} else {
			c.state = StatePaused
		}
		c.mu.Unlock()
	}

	c.publish(ctx, epoch, snap, yesBook, noBook)
}

// onFetchError logs a failed cycle and keeps the previous snapshot.
// Errors are non-fatal: the controller stays in its current auto-refresh
// state and, when auto-refresh is on, simply tries again next interval.
func (c *Controller) onFetchError(ctx context.Context, epoch uint64, questionID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}

	c.logger.WarnContext(ctx, "book fetch failed, keeping previous snapshot",
		slog.String("question_id", questionID),
		slog.String("error", err.Error()),
	)

	if c.autoRefresh {
		c.state = StatePolling
		c.scheduleLocked(ctx, epoch)
	} else {
		c.state = StatePaused
	}
}

// publish writes the fetched books through to the cache and invokes the
// update hook, re-checking the epoch so stale data never leaves the
// controller after a switch.
func (c *Controller) publish(ctx context.Context, epoch uint64, snap domain.BookSnapshot, yesBook, noBook domain.OutcomeBook) {
	c.mu.Lock()
	current := epoch == c.epoch
	c.mu.Unlock()
	if !current {
		return
	}

	if c.books != nil {
		for _, b := range []domain.OutcomeBook{yesBook, noBook} {
			if b.MarketID == "" {
				continue
			}
			if err := c.books.SetBook(ctx, b); err != nil {
				c.logger.WarnContext(ctx, "book cache write failed",
					slog.String("market_id", b.MarketID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if c.onUpdate != nil {
		c.onUpdate(snap)
	}
}

// scheduleLocked arms the refresh timer for the given epoch. The caller
// must hold c.mu.
func (c *Controller) scheduleLocked(ctx context.Context, epoch uint64) {
	c.stopTimerLocked()
	c.timer = time.AfterFunc(c.interval, func() {
		c.mu.Lock()
		if epoch != c.epoch || !c.autoRefresh {
			c.mu.Unlock()
			return
		}
		c.state = StateFetching
		c.mu.Unlock()
		c.fetch(ctx, epoch)
	})
}

// stopTimerLocked cancels any armed refresh timer. The caller must hold
// c.mu.
func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// buildSnapshot runs the pure pipeline over one pair of fetched books:
// crossing, depth accumulation, and liquidity classification.
func buildSnapshot(market domain.Market, outcome domain.Outcome, yesBook, noBook domain.OutcomeBook) domain.BookSnapshot {
	crossed := book.Cross(yesBook.Bids, noBook.Bids, outcome, market.LotScale())

	combined := append(yesBook.Levels(), noBook.Levels()...)

	return domain.BookSnapshot{
		QuestionID: market.QuestionID,
		Book:       crossed,
		BidDepth:   book.BidDepth(crossed.Bids),
		AskDepth:   book.AskDepth(crossed.Asks),
		Tier:       book.Classify(combined),
		FetchedAt:  time.Now().UTC(),
	}
}

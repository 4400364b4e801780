package domain

import "time"

// Outcome is one of the two complementary binary results of a question.
type Outcome string

const (
	OutcomeYes Outcome = "yes"
	OutcomeNo  Outcome = "no"
)

// Opposite returns the complementary outcome.
func (o Outcome) Opposite() Outcome {
	if o == OutcomeYes {
		return OutcomeNo
	}
	return OutcomeYes
}

// Side identifies which half of the book a level sits on.
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// Tick bounds for the integer price representation. Prices are quoted in
// thousandths of a unit currency so outcome inversion (MaxPriceTicks - t)
// is exact and free of floating-point drift.
const (
	MinPriceTicks = 0
	MaxPriceTicks = 1000
)

// PriceLevel is a single normalized book entry for one outcome market.
// Size is in scaled units: raw exchange lot sizes are converted by the
// lot-scale factor before any notional computation.
type PriceLevel struct {
	Side          Side
	PriceTicks    int
	Size          float64
	SourceOutcome Outcome
}

// Price returns the level's price in currency units.
func (l PriceLevel) Price() float64 {
	return float64(l.PriceTicks) / float64(MaxPriceTicks)
}

// Notional returns price * size, the dollar exposure of the level.
func (l PriceLevel) Notional() float64 {
	return l.Price() * l.Size
}

// OutcomeBook holds the raw quoted levels of a single outcome market as
// fetched from the venue. Either side may be empty; that is a valid book,
// not an error.
type OutcomeBook struct {
	MarketID  string
	Outcome   Outcome
	Bids      []PriceLevel
	Asks      []PriceLevel
	FetchedAt time.Time
}

// Levels returns bids and asks combined, for liquidity classification.
func (b OutcomeBook) Levels() []PriceLevel {
	out := make([]PriceLevel, 0, len(b.Bids)+len(b.Asks))
	out = append(out, b.Bids...)
	out = append(out, b.Asks...)
	return out
}

// Empty reports whether the book has no levels on either side.
func (b OutcomeBook) Empty() bool {
	return len(b.Bids) == 0 && len(b.Asks) == 0
}

// CrossedBook is the single logical two-sided book for a chosen trading
// outcome, built from the native outcome's bids plus the price-inverted
// bids of the complementary outcome.
//
// Invariants: Bids are ordered by non-increasing PriceTicks, Asks by
// non-decreasing PriceTicks. Order among equal prices is stable.
type CrossedBook struct {
	Outcome Outcome
	Bids    []PriceLevel
	Asks    []PriceLevel
}

// CumulativeLevel augments a PriceLevel with the running notional exposure
// accumulated from the side's best price outward.
type CumulativeLevel struct {
	PriceLevel
	CumulativeNotional float64
}

// LiquidityTier is a coarse classification of available depth.
type LiquidityTier int

const (
	TierNone LiquidityTier = iota
	TierLow
	TierMed
	TierHigh
)

// String returns the tier name used in API responses and badges.
func (t LiquidityTier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMed:
		return "med"
	case TierHigh:
		return "high"
	default:
		return "none"
	}
}

// BookSnapshot is one immutable per-refresh view of a question's crossed
// book and its derived depth state. Each poll cycle produces a fresh
// snapshot that atomically replaces the previous one.
type BookSnapshot struct {
	QuestionID string
	Book       CrossedBook
	BidDepth   []CumulativeLevel
	AskDepth   []CumulativeLevel
	Tier       LiquidityTier
	FetchedAt  time.Time
}

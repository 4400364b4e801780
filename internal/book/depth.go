package book

import (
	"sort"

	"github.com/ad714/bookmirror/internal/domain"
)

// Accumulate walks levels in the order given (which must be the side's
// canonical best-first order) and returns each level paired with the
// running notional exposure up to and including it. The input is not
// mutated; calling Accumulate twice on the same slice yields identical
// results.
func Accumulate(levels []domain.PriceLevel) []domain.CumulativeLevel {
	if len(levels) == 0 {
		return nil
	}

	out := make([]domain.CumulativeLevel, 0, len(levels))
	var running float64
	for _, lvl := range levels {
		running += lvl.Notional()
		out = append(out, domain.CumulativeLevel{
			PriceLevel:         lvl,
			CumulativeNotional: running,
		})
	}
	return out
}

// BidDepth sorts bids descending by price (best bid first) and
// accumulates notional outward from the best bid.
func BidDepth(bids []domain.PriceLevel) []domain.CumulativeLevel {
	sorted := sortedCopy(bids, func(a, b domain.PriceLevel) bool {
		return a.PriceTicks > b.PriceTicks
	})
	return Accumulate(sorted)
}

// AskDepth accumulates asks outward from the best (lowest) ask, matching
// bid semantics: depth is always measured from the best price. The
// returned slice is then re-ordered descending by price so the two sides
// render as one continuous price axis; the cumulative values themselves
// come from the ascending walk.
func AskDepth(asks []domain.PriceLevel) []domain.CumulativeLevel {
	sorted := sortedCopy(asks, func(a, b domain.PriceLevel) bool {
		return a.PriceTicks < b.PriceTicks
	})
	out := Accumulate(sorted)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriceTicks > out[j].PriceTicks
	})
	return out
}

// sortedCopy returns a stably sorted copy of levels, leaving the caller's
// slice untouched.
func sortedCopy(levels []domain.PriceLevel, less func(a, b domain.PriceLevel) bool) []domain.PriceLevel {
	if len(levels) == 0 {
		return nil
	}
	cp := make([]domain.PriceLevel, len(levels))
	copy(cp, levels)
	sort.SliceStable(cp, func(i, j int) bool { return less(cp[i], cp[j]) })
	return cp
}

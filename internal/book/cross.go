// Package book implements the order-book aggregation and trade-simulation
// engine: outcome crossing, cumulative depth, liquidity classification,
// and hypothetical fill simulation. All functions are pure and total over
// their documented input domains; empty inputs yield empty outputs, never
// errors.
package book

import (
	"sort"

	"github.com/ad714/bookmirror/internal/domain"
)

// Cross combines the independently quoted Yes and No books into one
// logical two-sided book for the chosen trading outcome.
//
// Native-outcome bids pass through unchanged. Complementary-outcome bids
// become asks at the inverted price (1000 - ticks): a bid on the opposite
// outcome at price p is economically an ask on the chosen outcome at
// 1 - p. Sizes are multiplied by scale (the market's lot-size factor)
// before any notional computation. Levels with non-positive size are
// dropped; inverted prices outside [0,1000] are clamped.
func Cross(yesBids, noBids []domain.PriceLevel, chosen domain.Outcome, scale float64) domain.CrossedBook {
	if scale <= 0 {
		scale = 1
	}

	native, complement := yesBids, noBids
	if chosen == domain.OutcomeNo {
		native, complement = noBids, yesBids
	}

	crossed := domain.CrossedBook{Outcome: chosen}

	for _, lvl := range native {
		if lvl.Size <= 0 {
			continue
		}
		crossed.Bids = append(crossed.Bids, domain.PriceLevel{
			Side:          domain.SideBid,
			PriceTicks:    clampTicks(lvl.PriceTicks),
			Size:          lvl.Size * scale,
			SourceOutcome: chosen,
		})
	}

	for _, lvl := range complement {
		if lvl.Size <= 0 {
			continue
		}
		crossed.Asks = append(crossed.Asks, domain.PriceLevel{
			Side:          domain.SideAsk,
			PriceTicks:    clampTicks(domain.MaxPriceTicks - lvl.PriceTicks),
			Size:          lvl.Size * scale,
			SourceOutcome: chosen.Opposite(),
		})
	}

	// Stable sorts keep the relative order of equal-priced levels.
	sort.SliceStable(crossed.Bids, func(i, j int) bool {
		return crossed.Bids[i].PriceTicks > crossed.Bids[j].PriceTicks
	})
	sort.SliceStable(crossed.Asks, func(i, j int) bool {
		return crossed.Asks[i].PriceTicks < crossed.Asks[j].PriceTicks
	})

	return crossed
}

// clampTicks bounds a tick value to the valid [0,1000] price range.
func clampTicks(t int) int {
	if t < domain.MinPriceTicks {
		return domain.MinPriceTicks
	}
	if t > domain.MaxPriceTicks {
		return domain.MaxPriceTicks
	}
	return t
}

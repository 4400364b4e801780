package book

import "github.com/ad714/bookmirror/internal/domain"

// Liquidity tier thresholds over total level size.
const (
	lowTierMinSize  = 500.0
	highTierMinSize = 2000.0
)

// Classify maps a set of price levels to a coarse liquidity tier by
// summed size. Zero-size levels contribute nothing; an empty set is
// TierNone.
func Classify(levels []domain.PriceLevel) domain.LiquidityTier {
	if len(levels) == 0 {
		return domain.TierNone
	}

	var total float64
	for _, lvl := range levels {
		if lvl.Size > 0 {
			total += lvl.Size
		}
	}

	// Zero-size levels are semantically absent.
	if total <= 0 {
		return domain.TierNone
	}

	switch {
	case total >= highTierMinSize:
		return domain.TierHigh
	case total >= lowTierMinSize:
		return domain.TierMed
	default:
		return domain.TierLow
	}
}

// MergeTiers folds the tiers of an event's sub-markets into one group
// tier. The merge is the maximum over the total order
// NONE < LOW < MED < HIGH, so it is associative and independent of the
// order the children are visited in.
func MergeTiers(tiers ...domain.LiquidityTier) domain.LiquidityTier {
	group := domain.TierNone
	for _, t := range tiers {
		if t > group {
			group = t
		}
	}
	return group
}

package book

import "github.com/ad714/bookmirror/internal/domain"

// EffectivePrice walks levels in the order given and returns the
// size-weighted average price of filling targetSize shares against them.
// The second return is false when the visible levels cannot cover the
// full target; the cross-venue matcher uses that to skip price
// comparisons on thin books.
func EffectivePrice(levels []domain.PriceLevel, targetSize float64) (float64, bool) {
	if targetSize <= 0 {
		return 0, false
	}

	remaining := targetSize
	var totalCost float64

	for _, lvl := range levels {
		if lvl.Size <= 0 {
			continue
		}
		take := remaining
		if lvl.Size < take {
			take = lvl.Size
		}
		totalCost += take * lvl.Price()
		remaining -= take
		if remaining <= 0 {
			break
		}
	}

	if remaining > 0 {
		return 0, false
	}
	return totalCost / targetSize, true
}

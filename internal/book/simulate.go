package book

import "github.com/ad714/bookmirror/internal/domain"

// Slippage synthesis constants. These are empirical tuning values carried
// over unchanged from the production simulator: the 0.1 baseline impact
// and the 5000 cash normalizer are required for result parity, and the
// 0.999 ceiling keeps the synthetic price strictly below $1.000.
const (
	slippageBaseImpact = 0.1
	slippageCashNorm   = 5000.0
	slippageImpactCap  = 0.5
	slippagePriceCap   = 0.999
)

// Simulate computes the hypothetical fill of an order against the crossed
// ask side. It is a total function: an empty book or a zero amount yields
// a zero-valued result, never an error.
//
// Limit mode fills the requested quantity at the limit price and pays no
// taker fee. Instant mode treats AmountOrQty as a dollar budget, walks
// the asks best-first, and prices any unfilled remainder at a synthetic
// slippage price so the simulator stays usable on illiquid books instead
// of rejecting the order.
func Simulate(crossedAsks []domain.PriceLevel, in domain.TradeSimulationInput) domain.TradeSimulationResult {
	takerFee := in.TakerFeeRate
	if takerFee == 0 {
		takerFee = domain.DefaultTakerFeeRate
	}
	winFee := in.WinFeeRate
	if winFee == 0 {
		winFee = domain.DefaultWinFeeRate
	}

	var res domain.TradeSimulationResult

	switch in.Mode {
	case domain.ModeLimit:
		res.FilledQty = in.AmountOrQty
		res.AvgPrice = in.LimitPrice
		res.TotalCost = res.FilledQty * res.AvgPrice

	default: // instant
		res = walkInstant(crossedAsks, in)
		res.Fee = res.TotalCost * takerFee
	}

	// Payout is $1.000 per share if the outcome wins; the win fee is
	// charged on positive pre-tax profit only, never on losses.
	preTax := res.FilledQty*1.0 - res.TotalCost - res.Fee
	if preTax > 0 {
		res.PotentialProfit = preTax - winFee*preTax
	} else {
		res.PotentialProfit = preTax
	}

	if res.TotalCost > 0 {
		res.ROIPercent = 100 * res.PotentialProfit / res.TotalCost
	}

	return res
}

// walkInstant consumes the ask side best-first against a dollar budget
// and synthesizes slippage for whatever the visible book cannot absorb.
func walkInstant(crossedAsks []domain.PriceLevel, in domain.TradeSimulationInput) domain.TradeSimulationResult {
	asks := sortedCopy(crossedAsks, func(a, b domain.PriceLevel) bool {
		return a.PriceTicks < b.PriceTicks
	})

	var res domain.TradeSimulationResult
	remainingCash := in.AmountOrQty
	if remainingCash <= 0 {
		return res
	}

	var lastPrice float64
	for _, lvl := range asks {
		if remainingCash <= 0 {
			break
		}
		price := lvl.Price()
		if price <= 0 || lvl.Size <= 0 {
			continue
		}

		levelNotional := price * lvl.Size
		fillCash := remainingCash
		if levelNotional < fillCash {
			fillCash = levelNotional
		}

		res.FilledQty += fillCash / price
		res.TotalCost += fillCash
		remainingCash -= fillCash
		lastPrice = price
	}

	// Whatever the book could not absorb fills at a synthetic price above
	// the worst level walked. basePrice falls back to the limit-price
	// input when the book was empty.
	if remainingCash > 0 {
		basePrice := lastPrice
		if basePrice == 0 {
			basePrice = in.LimitPrice
		}

		volumeImpact := remainingCash / slippageCashNorm
		if volumeImpact > slippageImpactCap {
			volumeImpact = slippageImpactCap
		}

		slippagePrice := basePrice + (1-basePrice)*(slippageBaseImpact+volumeImpact)
		if slippagePrice > slippagePriceCap {
			slippagePrice = slippagePriceCap
		}

		if slippagePrice > 0 {
			res.FilledQty += remainingCash / slippagePrice
			res.TotalCost += remainingCash
		}
	}

	if res.FilledQty > 0 {
		res.AvgPrice = res.TotalCost / res.FilledQty
	}

	return res
}

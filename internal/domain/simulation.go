package domain

// TradeMode selects how a simulated order is filled.
type TradeMode string

const (
	// ModeInstant simulates a market order by dollar budget: the ask side
	// is walked best-first and any unfilled remainder is priced with
	// synthetic slippage.
	ModeInstant TradeMode = "instant"
	// ModeLimit simulates a resting order for a literal quantity at a
	// fixed price; limit orders pay no taker fee in this model.
	ModeLimit TradeMode = "limit"
)

// Default fee rates for simulated fills.
const (
	DefaultTakerFeeRate = 0.0005
	DefaultWinFeeRate   = 0.10
)

// TradeSimulationInput describes the hypothetical order to simulate.
// AmountOrQty is a dollar budget in instant mode and a share quantity in
// limit mode. LimitPrice doubles as the slippage base price when an
// instant order meets an empty ask book.
type TradeSimulationInput struct {
	Outcome      Outcome
	Mode         TradeMode
	AmountOrQty  float64
	LimitPrice   float64
	TakerFeeRate float64
	WinFeeRate   float64
}

// TradeSimulationResult is the derived outcome of a simulation. It is
// recomputed on every input change and never persisted.
type TradeSimulationResult struct {
	FilledQty       float64
	TotalCost       float64
	AvgPrice        float64
	Fee             float64
	PotentialProfit float64
	ROIPercent      float64
}

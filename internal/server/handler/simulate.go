package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ad714/bookmirror/internal/book"
	"github.com/ad714/bookmirror/internal/domain"
	"github.com/ad714/bookmirror/internal/poller"
)

// SimulateHandler serves hypothetical trade simulations against the
// currently polled book. Nothing is ever submitted or persisted.
type SimulateHandler struct {
	poller *poller.Controller
	logger *slog.Logger
}

// NewSimulateHandler creates a SimulateHandler.
func NewSimulateHandler(p *poller.Controller, logger *slog.Logger) *SimulateHandler {
	return &SimulateHandler{
		poller: p,
		logger: logger.With(slog.String("handler", "simulate")),
	}
}

type simulateRequest struct {
	Outcome      string  `json:"outcome"`
	Mode         string  `json:"mode"`
	AmountOrQty  float64 `json:"amount_or_qty"`
	LimitPrice   float64 `json:"limit_price"`
	TakerFeeRate float64 `json:"taker_fee_rate,omitempty"`
	WinFeeRate   float64 `json:"win_fee_rate,omitempty"`
}

type simulateResponse struct {
	QuestionID      string  `json:"question_id"`
	FilledQty       float64 `json:"filled_qty"`
	TotalCost       float64 `json:"total_cost"`
	AvgPrice        float64 `json:"avg_price"`
	Fee             float64 `json:"fee"`
	PotentialProfit float64 `json:"potential_profit"`
	ROIPercent      float64 `json:"roi_percent"`
}

// Simulate runs one trade simulation over the current snapshot.
// POST /api/simulate
func (h *SimulateHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := domain.TradeMode(req.Mode)
	if mode != domain.ModeInstant && mode != domain.ModeLimit {
		writeError(w, http.StatusBadRequest, "mode must be \"instant\" or \"limit\"")
		return
	}
	if req.AmountOrQty <= 0 {
		writeError(w, http.StatusBadRequest, "amount_or_qty must be positive")
		return
	}
	if mode == domain.ModeLimit && req.LimitPrice <= 0 {
		writeError(w, http.StatusBadRequest, "limit_price must be positive in limit mode")
		return
	}

	snap, ok := h.poller.Snapshot()
	if !ok {
		writeError(w, http.StatusConflict, "no market selected")
		return
	}

	input := domain.TradeSimulationInput{
		Outcome:      domain.Outcome(req.Outcome),
		Mode:         mode,
		AmountOrQty:  req.AmountOrQty,
		LimitPrice:   req.LimitPrice,
		TakerFeeRate: req.TakerFeeRate,
		WinFeeRate:   req.WinFeeRate,
	}

	result := book.Simulate(snap.Book.Asks, input)

	h.logger.InfoContext(r.Context(), "trade simulated",
		slog.String("question_id", snap.QuestionID),
		slog.String("mode", string(mode)),
		slog.Float64("amount_or_qty", req.AmountOrQty),
		slog.Float64("filled_qty", result.FilledQty),
	)

	writeJSON(w, http.StatusOK, simulateResponse{
		QuestionID:      snap.QuestionID,
		FilledQty:       result.FilledQty,
		TotalCost:       result.TotalCost,
		AvgPrice:        result.AvgPrice,
		Fee:             result.Fee,
		PotentialProfit: result.PotentialProfit,
		ROIPercent:      result.ROIPercent,
	})
}

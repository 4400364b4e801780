package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ad714/bookmirror/internal/domain"
	"github.com/ad714/bookmirror/internal/poller"
	"github.com/ad714/bookmirror/internal/service"
)

// PollerHandler exposes the polling controller over HTTP: status,
// market selection, and resume.
type PollerHandler struct {
	poller  *poller.Controller
	markets *service.MarketService
	logger  *slog.Logger
}

// NewPollerHandler creates a PollerHandler.
func NewPollerHandler(p *poller.Controller, markets *service.MarketService, logger *slog.Logger) *PollerHandler {
	return &PollerHandler{
		poller:  p,
		markets: markets,
		logger:  logger.With(slog.String("handler", "poller")),
	}
}

// Status returns the observable poller state.
// GET /api/poller/status
func (h *PollerHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.poller.Status())
}

type selectRequest struct {
	QuestionID string `json:"question_id"`
	Outcome    string `json:"outcome"`
}

// Select switches the poller to a new question and outcome.
// POST /api/poller/select
func (h *PollerHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "question_id is required")
		return
	}

	outcome := domain.Outcome(req.Outcome)
	if outcome != domain.OutcomeYes && outcome != domain.OutcomeNo {
		writeError(w, http.StatusBadRequest, "outcome must be \"yes\" or \"no\"")
		return
	}

	market, err := h.markets.Get(r.Context(), req.QuestionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if market.YesMarketID == "" || market.NoMarketID == "" {
		writeError(w, http.StatusUnprocessableEntity, "question has no outcome markets")
		return
	}

	// Polling must outlive this request; only shutdown stops it.
	h.poller.Select(context.WithoutCancel(r.Context()), market, outcome)

	writeJSON(w, http.StatusAccepted, h.poller.Status())
}

// Resume re-enables polling for a paused market.
// POST /api/poller/resume
func (h *PollerHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.poller.Resume(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusOK, h.poller.Status())
}

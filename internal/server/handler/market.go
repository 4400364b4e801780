package handler

import (
	"log/slog"
	"net/http"

	"github.com/ad714/bookmirror/internal/domain"
	"github.com/ad714/bookmirror/internal/service"
)

// MarketHandler serves the question catalog endpoints.
type MarketHandler struct {
	markets *service.MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(markets *service.MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logger.With(slog.String("handler", "market")),
	}
}

// ListMarkets returns the live catalog page with per-event liquidity
// badges derived from cached books.
// GET /api/markets
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	markets, err := h.markets.ListLive(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list markets failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	tiers := h.markets.GroupTiers(r.Context(), markets)

	views := make([]marketView, 0, len(markets))
	for _, m := range markets {
		views = append(views, newMarketView(m, tiers[m.GroupKey()]))
	}

	total, err := h.markets.Count(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "count markets failed",
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"markets": views,
		"total":   total,
		"limit":   opts.Limit,
		"offset":  opts.Offset,
	})
}

// GetMarket returns a single question by ID.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	m, err := h.markets.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	tiers := h.markets.GroupTiers(r.Context(), []domain.Market{m})

	writeJSON(w, http.StatusOK, newMarketView(m, tiers[m.GroupKey()]))
}

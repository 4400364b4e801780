package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ad714/bookmirror/internal/service"
)

// MatchHandler serves the stored cross-venue match results.
type MatchHandler struct {
	matches *service.MatchService
	logger  *slog.Logger
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(matches *service.MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{
		matches: matches,
		logger:  logger.With(slog.String("handler", "match")),
	}
}

type matchView struct {
	QuestionID string    `json:"question_id"`
	VenueID    string    `json:"venue_id"`
	FliqTitle  string    `json:"fliq_title"`
	VenueTitle string    `json:"venue_title"`
	Score      float64   `json:"score"`
	MatchedAt  time.Time `json:"matched_at"`
}

// ListMatches returns stored matches, best-scoring first. An optional
// min_score query parameter raises the threshold.
// GET /api/matches
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	minScore := 0.0
	if v := r.URL.Query().Get("min_score"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			writeError(w, http.StatusBadRequest, "min_score must be in [0,1]")
			return
		}
		minScore = f
	}

	matches, err := h.matches.List(r.Context(), minScore, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list matches failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	views := make([]matchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, matchView(m))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"matches": views,
		"limit":   opts.Limit,
		"offset":  opts.Offset,
	})
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ad714/bookmirror/internal/book"
	"github.com/ad714/bookmirror/internal/domain"
	"github.com/ad714/bookmirror/internal/poller"
	"github.com/ad714/bookmirror/internal/service"
)

// BookHandler serves the aggregated book view for one question.
type BookHandler struct {
	poller  *poller.Controller
	markets *service.MarketService
	books   domain.BookCache // may be nil
	logger  *slog.Logger
}

// NewBookHandler creates a BookHandler.
func NewBookHandler(p *poller.Controller, markets *service.MarketService, books domain.BookCache, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		poller:  p,
		markets: markets,
		books:   books,
		logger:  logger.With(slog.String("handler", "book")),
	}
}

// GetBook returns the crossed book snapshot for a question. The actively
// polled question is served from the live snapshot; any other question
// is assembled from the last cached outcome books, when present.
// GET /api/markets/{id}/book
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	if snap, ok := h.poller.Snapshot(); ok && snap.QuestionID == id {
		writeJSON(w, http.StatusOK, NewSnapshotView(snap))
		return
	}

	if h.books == nil {
		writeError(w, http.StatusNotFound, "no book for market")
		return
	}

	market, err := h.markets.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	yesBook, yesErr := h.getCached(r, market.YesMarketID)
	noBook, noErr := h.getCached(r, market.NoMarketID)
	if yesErr != nil && noErr != nil {
		writeError(w, http.StatusNotFound, "no book for market")
		return
	}

	// Default the view to the Yes side; the live snapshot covers the
	// actively traded outcome.
	crossed := book.Cross(yesBook.Bids, noBook.Bids, domain.OutcomeYes, market.LotScale())

	fetchedAt := yesBook.FetchedAt
	if noBook.FetchedAt.After(fetchedAt) {
		fetchedAt = noBook.FetchedAt
	}
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	snap := domain.BookSnapshot{
		QuestionID: id,
		Book:       crossed,
		BidDepth:   book.BidDepth(crossed.Bids),
		AskDepth:   book.AskDepth(crossed.Asks),
		Tier:       book.Classify(append(yesBook.Levels(), noBook.Levels()...)),
		FetchedAt:  fetchedAt,
	}

	writeJSON(w, http.StatusOK, NewSnapshotView(snap))
}

func (h *BookHandler) getCached(r *http.Request, marketID string) (domain.OutcomeBook, error) {
	if marketID == "" {
		return domain.OutcomeBook{}, domain.ErrNotFound
	}
	b, err := h.books.GetBook(r.Context(), marketID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		h.logger.WarnContext(r.Context(), "book cache read failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}
	return b, err
}

package handler

import (
	"time"

	"github.com/ad714/bookmirror/internal/book"
	"github.com/ad714/bookmirror/internal/domain"
)

// effectiveRefSize is the share count used for the indicative
// effective-ask-price quote on snapshots.
const effectiveRefSize = 100.0

// levelView is one rendered book level.
type levelView struct {
	PriceTicks int     `json:"price_ticks"`
	Price      float64 `json:"price"`
	Size       float64 `json:"size"`
	Source     string  `json:"source_outcome"`
}

// depthView is one rendered cumulative depth row.
type depthView struct {
	levelView
	CumulativeNotional float64 `json:"cumulative_notional"`
}

// snapshotView is the JSON shape of a full book snapshot, shared between
// the REST book endpoint and the WebSocket feed.
type snapshotView struct {
	QuestionID string      `json:"question_id"`
	Outcome    string      `json:"outcome"`
	Bids       []depthView `json:"bids"`
	Asks       []depthView `json:"asks"`
	Tier       string      `json:"tier"`
	// EffectiveAskPrice is the size-weighted price of buying 100 shares
	// against the visible asks; null when the book cannot cover it.
	EffectiveAskPrice *float64  `json:"effective_ask_price"`
	FetchedAt         time.Time `json:"fetched_at"`
}

// marketView is the catalog list entry.
type marketView struct {
	QuestionID   string    `json:"question_id"`
	Title        string    `json:"title"`
	Category     string    `json:"category,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	YesMarketID  string    `json:"yes_market_id"`
	NoMarketID   string    `json:"no_market_id"`
	EndTime      time.Time `json:"end_time"`
	ImageURL     string    `json:"image_url,omitempty"`
	Tier         string    `json:"tier"`
}

// NewSnapshotView renders a domain snapshot for transport. It is
// exported so the poller's WebSocket hook can reuse the same shape.
func NewSnapshotView(snap domain.BookSnapshot) any {
	view := snapshotView{
		QuestionID: snap.QuestionID,
		Outcome:    string(snap.Book.Outcome),
		Bids:       depthViews(snap.BidDepth),
		Asks:       depthViews(snap.AskDepth),
		Tier:       snap.Tier.String(),
		FetchedAt:  snap.FetchedAt,
	}
	if p, ok := book.EffectivePrice(snap.Book.Asks, effectiveRefSize); ok {
		view.EffectiveAskPrice = &p
	}
	return view
}

func depthViews(levels []domain.CumulativeLevel) []depthView {
	out := make([]depthView, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, depthView{
			levelView: levelView{
				PriceTicks: lvl.PriceTicks,
				Price:      lvl.Price(),
				Size:       lvl.Size,
				Source:     string(lvl.SourceOutcome),
			},
			CumulativeNotional: lvl.CumulativeNotional,
		})
	}
	return out
}

func newMarketView(m domain.Market, tier domain.LiquidityTier) marketView {
	return marketView{
		QuestionID:  m.QuestionID,
		Title:       m.Title(),
		Category:    m.Category,
		Tags:        m.Tags,
		YesMarketID: m.YesMarketID,
		NoMarketID:  m.NoMarketID,
		EndTime:     m.EndTime,
		ImageURL:    m.ImageURL,
		Tier:        tier.String(),
	}
}

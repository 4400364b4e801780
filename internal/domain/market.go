package domain

import (
	"math"
	"time"
)

// Market is a single tradable Fliq question with its two outcome markets.
type Market struct {
	QuestionID      string
	Header          string
	ParentID        string
	ParentHeader    string
	Category        string
	Tags            []string
	LotSize         float64
	TickSize        float64
	Decimals        int
	IsSettled       bool
	SettlementPrice float64
	ContractAddress string // normalized hex address, empty if invalid
	YesMarketID     string
	NoMarketID      string
	EndTime         time.Time
	ImageURL        string
	UpdatedAt       time.Time
}

// LotScale converts raw exchange level sizes (lot units) into currency
// units: lotSize / 10^decimals. A zero lot size falls back to 1 so a
// missing field never zeroes out a whole book.
func (m Market) LotScale() float64 {
	if m.LotSize <= 0 {
		return 1
	}
	return m.LotSize / math.Pow10(m.Decimals)
}

// GroupKey is the identity used to deduplicate sub-questions of the same
// parent event: the parent question ID when present, else the question ID.
func (m Market) GroupKey() string {
	if m.ParentID != "" {
		return m.ParentID
	}
	return m.QuestionID
}

// Title returns the display header, preferring the parent event header.
func (m Market) Title() string {
	if m.ParentHeader != "" {
		return m.ParentHeader
	}
	if m.Header != "" {
		return m.Header
	}
	return m.QuestionID
}

// Live reports whether the question is still tradable at the given time.
func (m Market) Live(now time.Time) bool {
	return !m.IsSettled && !m.EndTime.IsZero() && m.EndTime.After(now)
}

// VenueMarket is a market on the external comparison venue (Polymarket),
// consumed by the cross-venue matcher.
type VenueMarket struct {
	ID            string
	Title         string
	Description   string
	StartDate     time.Time
	EndDate       time.Time
	Active        bool
	Closed        bool
	Tags          []string
	Outcomes      []string
	OutcomePrices []float64
	TokenIDs      []string
}

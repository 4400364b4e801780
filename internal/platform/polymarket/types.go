package polymarket

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/ad714/bookmirror/internal/domain"
)

// APIMarket is the Gamma API market record. Several list-valued fields
// arrive as JSON strings containing JSON arrays and are decoded in a
// second pass.
type APIMarket struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	Description   string `json:"description"`
	Slug          string `json:"slug"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Active        bool   `json:"active"`
	Closed        bool   `json:"closed"`
	Outcomes      string `json:"outcomes"`      // e.g. `["Yes","No"]`
	OutcomePrices string `json:"outcomePrices"` // e.g. `["0.62","0.38"]`
	ClobTokenIDs  string `json:"clobTokenIds"`
	Volume        string `json:"volume"`

	Events []APIEventRef `json:"events"`
}

// APIEventRef is the event summary embedded in a market record.
type APIEventRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// APITag is one Gamma tag attached to a market or event.
type APITag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// ToDomainVenueMarket maps a Gamma market to the domain representation.
func (m APIMarket) ToDomainVenueMarket() domain.VenueMarket {
	out := domain.VenueMarket{
		ID:          m.ID,
		Title:       m.Question,
		Description: m.Description,
		Active:      m.Active,
		Closed:      m.Closed,
	}

	out.StartDate = parseGammaTime(m.StartDate)
	out.EndDate = parseGammaTime(m.EndDate)
	out.Outcomes = decodeStringArray(m.Outcomes)
	out.TokenIDs = decodeStringArray(m.ClobTokenIDs)

	for _, s := range decodeStringArray(m.OutcomePrices) {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			p = 0
		}
		out.OutcomePrices = append(out.OutcomePrices, p)
	}

	for _, ev := range m.Events {
		if ev.Title != "" {
			out.Tags = append(out.Tags, ev.Title)
		}
	}

	return out
}

// decodeStringArray decodes a JSON array embedded in a string field.
// Malformed input yields nil rather than an error; a market with a bad
// outcomes field is skipped by the filter, not fatal to the page.
func decodeStringArray(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func parseGammaTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

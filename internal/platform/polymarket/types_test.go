package polymarket

import (
	"testing"
)

func TestToDomainVenueMarket(t *testing.T) {
	api := APIMarket{
		ID:            "517310",
		Question:      "Arsenal vs. Chelsea",
		StartDate:     "2026-09-02T12:00:00Z",
		EndDate:       "2026-09-02T14:00:00Z",
		Active:        true,
		Outcomes:      `["Yes","No"]`,
		OutcomePrices: `["0.62","0.38"]`,
		ClobTokenIDs:  `["111","222"]`,
		Events:        []APIEventRef{{ID: "9", Title: "EPL"}},
	}

	m := api.ToDomainVenueMarket()

	if m.ID != "517310" || m.Title != "Arsenal vs. Chelsea" {
		t.Fatalf("identity = %q/%q", m.ID, m.Title)
	}
	if len(m.Outcomes) != 2 || m.Outcomes[0] != "Yes" {
		t.Errorf("outcomes = %v", m.Outcomes)
	}
	if len(m.OutcomePrices) != 2 || m.OutcomePrices[0] != 0.62 {
		t.Errorf("prices = %v", m.OutcomePrices)
	}
	if len(m.TokenIDs) != 2 || m.TokenIDs[1] != "222" {
		t.Errorf("token ids = %v", m.TokenIDs)
	}
	if len(m.Tags) != 1 || m.Tags[0] != "EPL" {
		t.Errorf("tags = %v", m.Tags)
	}
	if m.EndDate.IsZero() || m.StartDate.IsZero() {
		t.Errorf("dates not parsed: %v / %v", m.StartDate, m.EndDate)
	}
}

func TestDecodeStringArrayMalformed(t *testing.T) {
	if got := decodeStringArray("not json"); got != nil {
		t.Errorf("malformed input decoded to %v", got)
	}
	if got := decodeStringArray(""); got != nil {
		t.Errorf("empty input decoded to %v", got)
	}
}

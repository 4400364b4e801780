package fliq

import (
	"testing"
	"time"

	"github.com/ad714/bookmirror/internal/domain"
)

func TestToDomainMarket(t *testing.T) {
	q := APIQuestion{
		QuestionID:       "q-123",
		LotSize:          "1000",
		TickSize:         "1",
		Decimals:         "2",
		IsSettled:        false,
		SettlementPrice:  "0",
		ContractAddress:  "0x52908400098527886e0f7030069857d2e4169ee7",
		YesTokenMarketID: "m-yes",
		NoTokenMarketID:  "m-no",
		BlockchainMetadata: APIBlockchainMetadata{
			ParentQuestionID:     "ev-9",
			QuestionHeader:       "  Arsenal vs Chelsea  ",
			ParentQuestionHeader: "Premier League Week 3",
			Category:             "football",
			Tags:                 []string{"epl"},
			QuestionEndTime:      "1756656000",
		},
	}

	m := q.ToDomainMarket()

	if m.Header != "Arsenal vs Chelsea" {
		t.Errorf("Header = %q", m.Header)
	}
	if m.YesMarketID != "m-yes" || m.NoMarketID != "m-no" {
		t.Errorf("market ids = %q/%q", m.YesMarketID, m.NoMarketID)
	}
	if got := m.LotScale(); got != 10 {
		t.Errorf("LotScale() = %v, want 10", got)
	}
	// EIP-55 checksummed form, not the lowercase input.
	if m.ContractAddress != "0x52908400098527886E0F7030069857D2E4169EE7" {
		t.Errorf("ContractAddress = %q", m.ContractAddress)
	}
	want := time.Unix(1756656000, 0).UTC()
	if !m.EndTime.Equal(want) {
		t.Errorf("EndTime = %v, want %v", m.EndTime, want)
	}
	if m.GroupKey() != "ev-9" {
		t.Errorf("GroupKey() = %q, want ev-9", m.GroupKey())
	}
}

func TestToDomainMarketDefaults(t *testing.T) {
	q := APIQuestion{
		QuestionID:      "q-1",
		LotSize:         "garbage",
		Decimals:        "-3",
		ContractAddress: "not-an-address",
		BlockchainMetadata: APIBlockchainMetadata{
			QuestionHeader: "Standalone question",
		},
	}

	m := q.ToDomainMarket()

	if m.ContractAddress != "" {
		t.Errorf("bad address kept: %q", m.ContractAddress)
	}
	if got := m.LotScale(); got != 1 {
		t.Errorf("LotScale() = %v, want neutral 1", got)
	}
	if !m.EndTime.IsZero() {
		t.Errorf("EndTime = %v, want zero", m.EndTime)
	}
	if m.GroupKey() != "q-1" {
		t.Errorf("GroupKey() = %q, want own id", m.GroupKey())
	}
}

func TestToDomainMarketExpandedHeaderFallback(t *testing.T) {
	q := APIQuestion{
		QuestionID: "q-2",
		BlockchainMetadata: APIBlockchainMetadata{
			QuestionHeaderExpanded: "Will Arsenal beat Chelsea on Saturday?",
		},
	}

	if got := q.ToDomainMarket().Header; got != "Will Arsenal beat Chelsea on Saturday?" {
		t.Errorf("Header = %q, want expanded header fallback", got)
	}
}

func TestToDomainLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     APIPriceLevel
		wantOK    bool
		wantTicks int
		wantSide  domain.Side
	}{
		{
			name:      "bid in range",
			level:     APIPriceLevel{Direction: "bid", Price: 620, TotalSize: 40},
			wantOK:    true,
			wantTicks: 620,
			wantSide:  domain.SideBid,
		},
		{
			name:      "ask case insensitive",
			level:     APIPriceLevel{Direction: "ASK", Price: 700, TotalSize: 5},
			wantOK:    true,
			wantTicks: 700,
			wantSide:  domain.SideAsk,
		},
		{
			name:   "zero size dropped",
			level:  APIPriceLevel{Direction: "bid", Price: 500, TotalSize: 0},
			wantOK: false,
		},
		{
			name:      "over range clamped",
			level:     APIPriceLevel{Direction: "bid", Price: 1300, TotalSize: 2},
			wantOK:    true,
			wantTicks: 1000,
			wantSide:  domain.SideBid,
		},
		{
			name:      "negative clamped",
			level:     APIPriceLevel{Direction: "ask", Price: -5, TotalSize: 2},
			wantOK:    true,
			wantTicks: 0,
			wantSide:  domain.SideAsk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, ok := tt.level.ToDomainLevel(domain.OutcomeYes)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if lvl.PriceTicks != tt.wantTicks {
				t.Errorf("ticks = %d, want %d", lvl.PriceTicks, tt.wantTicks)
			}
			if lvl.Side != tt.wantSide {
				t.Errorf("side = %s, want %s", lvl.Side, tt.wantSide)
			}
			if lvl.SourceOutcome != domain.OutcomeYes {
				t.Errorf("source outcome = %s", lvl.SourceOutcome)
			}
		})
	}
}

package book

import (
	"math"
	"reflect"
	"testing"

	"github.com/ad714/bookmirror/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAccumulate_RunningNotional(t *testing.T) {
	levels := []domain.PriceLevel{
		bid(600, 100, domain.OutcomeYes), // 0.6 * 100 = 60
		bid(500, 50, domain.OutcomeYes),  // 0.5 * 50  = 25
		bid(400, 10, domain.OutcomeYes),  // 0.4 * 10  = 4
	}

	out := Accumulate(levels)

	want := []float64{60, 85, 89}
	if len(out) != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), len(out))
	}
	for i, w := range want {
		if !almostEqual(out[i].CumulativeNotional, w) {
			t.Fatalf("level %d: expected cumulative %v, got %v", i, w, out[i].CumulativeNotional)
		}
	}
}

func TestAccumulate_Empty(t *testing.T) {
	if out := Accumulate(nil); out != nil {
		t.Fatalf("expected nil for empty input, got %v", out)
	}
}

func TestAccumulate_Idempotent(t *testing.T) {
	levels := []domain.PriceLevel{
		bid(700, 5, domain.OutcomeYes),
		bid(650, 9, domain.OutcomeYes),
	}

	first := Accumulate(levels)
	second := Accumulate(levels)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("accumulate not idempotent:\n%v\n%v", first, second)
	}
}

func TestBidDepth_Monotone(t *testing.T) {
	bids := []domain.PriceLevel{
		bid(400, 10, domain.OutcomeYes),
		bid(600, 100, domain.OutcomeYes),
		bid(500, 50, domain.OutcomeYes),
	}

	out := BidDepth(bids)

	if out[0].PriceTicks != 600 {
		t.Fatalf("best bid should lead the walk, got %d", out[0].PriceTicks)
	}
	for i := 1; i < len(out); i++ {
		if out[i].CumulativeNotional < out[i-1].CumulativeNotional {
			t.Fatalf("cumulative notional decreased at %d: %v", i, out)
		}
	}
}

func TestAskDepth_CumulativeFromBestAsk(t *testing.T) {
	asks := []domain.PriceLevel{
		{Side: domain.SideAsk, PriceTicks: 700, Size: 10},
		{Side: domain.SideAsk, PriceTicks: 550, Size: 20},
		{Side: domain.SideAsk, PriceTicks: 620, Size: 5},
	}

	out := AskDepth(asks)

	// Display order: descending by price.
	wantTicks := []int{700, 620, 550}
	for i, w := range wantTicks {
		if out[i].PriceTicks != w {
			t.Fatalf("display order wrong at %d: expected %d, got %d", i, w, out[i].PriceTicks)
		}
	}

	// Cumulative values come from the ascending walk (best ask outward):
	// 550: 0.55*20 = 11; 620: +0.62*5 = 14.1; 700: +0.7*10 = 21.1.
	byTicks := map[int]float64{}
	for _, cl := range out {
		byTicks[cl.PriceTicks] = cl.CumulativeNotional
	}
	if !almostEqual(byTicks[550], 11) {
		t.Fatalf("best ask cumulative: expected 11, got %v", byTicks[550])
	}
	if !almostEqual(byTicks[620], 14.1) {
		t.Fatalf("second ask cumulative: expected 14.1, got %v", byTicks[620])
	}
	if !almostEqual(byTicks[700], 21.1) {
		t.Fatalf("worst ask cumulative: expected 21.1, got %v", byTicks[700])
	}
}

func TestAskDepth_DoesNotMutateInput(t *testing.T) {
	asks := []domain.PriceLevel{
		{Side: domain.SideAsk, PriceTicks: 700, Size: 10},
		{Side: domain.SideAsk, PriceTicks: 550, Size: 20},
	}
	orig := make([]domain.PriceLevel, len(asks))
	copy(orig, asks)

	AskDepth(asks)

	if !reflect.DeepEqual(asks, orig) {
		t.Fatalf("input slice mutated: %v", asks)
	}
}

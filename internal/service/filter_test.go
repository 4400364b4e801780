package service

import (
	"testing"
	"time"

	"github.com/ad714/bookmirror/internal/domain"
)

func liveMarket(id string, endIn time.Duration) domain.Market {
	return domain.Market{
		QuestionID: id,
		Header:     "Arsenal vs Chelsea",
		Category:   "football",
		EndTime:    time.Now().Add(endIn),
	}
}

func TestFilterQuestionsExclusions(t *testing.T) {
	now := time.Now()

	settled := liveMarket("settled", time.Hour)
	settled.IsSettled = true

	expired := liveMarket("expired", -time.Hour)

	noEnd := liveMarket("no-end", time.Hour)
	noEnd.EndTime = time.Time{}

	crypto := liveMarket("crypto", time.Hour)
	crypto.Category = "Crypto 5 Min"

	tagged := liveMarket("tagged", time.Hour)
	tagged.Tags = []string{"BTC", "price"}

	handicap := liveMarket("handicap", time.Hour)
	handicap.Header = "Arsenal passes 2.5 goals"

	keep := liveMarket("keep", time.Hour)

	got := FilterQuestions([]domain.Market{settled, expired, noEnd, crypto, tagged, handicap, keep}, now)

	if len(got) != 1 || got[0].QuestionID != "keep" {
		ids := make([]string, 0, len(got))
		for _, m := range got {
			ids = append(ids, m.QuestionID)
		}
		t.Fatalf("kept %v, want [keep]", ids)
	}
}

func TestFilterQuestionsDedupsByParentSoonestFirst(t *testing.T) {
	now := time.Now()

	late := liveMarket("late", 3*time.Hour)
	late.ParentID = "ev-1"

	soon := liveMarket("soon", time.Hour)
	soon.ParentID = "ev-1"

	other := liveMarket("other", 2*time.Hour)

	got := FilterQuestions([]domain.Market{late, soon, other}, now)

	if len(got) != 2 {
		t.Fatalf("got %d markets, want 2", len(got))
	}
	// Sorted by end time and deduped to the soonest sub-question.
	if got[0].QuestionID != "soon" || got[1].QuestionID != "other" {
		t.Fatalf("order = [%s %s], want [soon other]", got[0].QuestionID, got[1].QuestionID)
	}
}

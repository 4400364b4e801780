package service

import (
	"sort"
	"strings"
	"time"

	"github.com/ad714/bookmirror/internal/domain"
)

// Catalog exclusion rules. High-frequency crypto questions and handicap
// variants clutter the catalog and are never shown.
var (
	excludedCategories = []string{"5 min", "15 min", "up down"}
	excludedTags       = []string{"btc", "eth", "5 min", "15 min"}
	excludedKeywords   = []string{"passes", "pass against"}
)

// FilterQuestions reduces the raw catalog to the displayable set:
// unsettled questions with a future end time that survive the category,
// tag, and header-keyword exclusions, deduplicated to one question per
// parent event, sorted soonest-ending first.
func FilterQuestions(markets []domain.Market, now time.Time) []domain.Market {
	kept := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if !m.Live(now) {
			continue
		}
		if excludedQuestion(m) {
			continue
		}
		kept = append(kept, m)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].EndTime.Before(kept[j].EndTime)
	})

	// One entry per parent event, keeping the soonest-ending sub-question.
	seen := make(map[string]bool, len(kept))
	out := kept[:0]
	for _, m := range kept {
		key := m.GroupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}

	return out
}

func excludedQuestion(m domain.Market) bool {
	category := strings.ToLower(m.Category)
	for _, c := range excludedCategories {
		if strings.Contains(category, c) {
			return true
		}
	}

	for _, tag := range m.Tags {
		lower := strings.ToLower(tag)
		for _, t := range excludedTags {
			if strings.Contains(lower, t) {
				return true
			}
		}
	}

	header := strings.ToLower(m.Header)
	for _, kw := range excludedKeywords {
		if strings.Contains(header, kw) {
			return true
		}
	}

	return false
}

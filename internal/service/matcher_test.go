package service

import (
	"testing"
	"time"

	"github.com/ad714/bookmirror/internal/domain"
)

func TestExtractTeams(t *testing.T) {
	tests := []struct {
		title    string
		home     string
		away     string
	}{
		{"Arsenal vs Chelsea", "arsenal", "chelsea"},
		{"Real Madrid v FC Barcelona", "real madrid", "fc barcelona"},
		{"Arsenal vs. Chelsea", "arsenal", "chelsea"},
		{"Will it rain tomorrow", "will it rain tomorrow", ""},
	}

	for _, tt := range tests {
		home, away := extractTeams(tt.title)
		if home != tt.home || away != tt.away {
			t.Errorf("extractTeams(%q) = %q/%q, want %q/%q", tt.title, home, away, tt.home, tt.away)
		}
	}
}

func TestTokenSimilarity(t *testing.T) {
	if got := tokenSimilarity("manchester united", "manchester united"); got != 1 {
		t.Errorf("identical strings = %v, want 1", got)
	}
	if got := tokenSimilarity("manchester united", "manchester city"); got != 0.5 {
		t.Errorf("one shared token of two = %v, want 0.5", got)
	}
	if got := tokenSimilarity("arsenal", "chelsea"); got != 0 {
		t.Errorf("disjoint = %v, want 0", got)
	}
	if got := tokenSimilarity("", "chelsea"); got != 0 {
		t.Errorf("empty side = %v, want 0", got)
	}
}

func TestDateProximityScore(t *testing.T) {
	base := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		delta time.Duration
		want  float64
	}{
		{0, 1.0},
		{6 * time.Hour, 1.0},
		{7 * time.Hour, 0.6},
		{24 * time.Hour, 0.6},
		{36 * time.Hour, 0.3},
		{48 * time.Hour, 0.3},
		{49 * time.Hour, 0},
	}

	for _, tt := range tests {
		if got := dateProximityScore(base, base.Add(tt.delta)); got != tt.want {
			t.Errorf("delta %v: score = %v, want %v", tt.delta, got, tt.want)
		}
		// Symmetric.
		if got := dateProximityScore(base.Add(tt.delta), base); got != tt.want {
			t.Errorf("delta -%v: score = %v, want %v", tt.delta, got, tt.want)
		}
	}

	if got := dateProximityScore(time.Time{}, base); got != 0 {
		t.Errorf("zero time = %v, want 0", got)
	}
}

func TestComputeMatchScore(t *testing.T) {
	kickoff := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)

	score := computeMatchScore(
		"Arsenal vs Chelsea", kickoff, "Premier League",
		"Arsenal vs. Chelsea", kickoff.Add(time.Hour), "EPL Premier League matchday",
	)
	// Full team overlap, same-day kickoff, shared competition hint.
	if score != 1.0 {
		t.Errorf("perfect match score = %v, want 1.0", score)
	}

	score = computeMatchScore(
		"Arsenal vs Chelsea", kickoff, "",
		"Bayern vs Dortmund", kickoff, "",
	)
	// Different clubs, same time: only the date component survives.
	if score != 0.3 {
		t.Errorf("mismatched teams score = %v, want 0.3", score)
	}

	// Swapped home and away teams still match.
	score = computeMatchScore(
		"Chelsea vs Arsenal", kickoff, "",
		"Arsenal vs Chelsea", kickoff, "",
	)
	if score != 0.9 {
		t.Errorf("reversed fixture score = %v, want 0.9", score)
	}
}

func TestIsFootballMarket(t *testing.T) {
	tests := []struct {
		name   string
		market domain.VenueMarket
		want   bool
	}{
		{
			"fixture with league tag",
			domain.VenueMarket{Title: "Arsenal vs Chelsea", Tags: []string{"Premier League"}},
			true,
		},
		{
			"fixture with hint in description",
			domain.VenueMarket{Title: "Bayern v Dortmund", Description: "Bundesliga matchday 3"},
			true,
		},
		{
			"two-team title without league hint",
			domain.VenueMarket{Title: "Trump vs Newsom"},
			false,
		},
		{
			"league hint without fixture title",
			domain.VenueMarket{Title: "Premier League winner 2027"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFootballMarket(tt.market); got != tt.want {
				t.Errorf("IsFootballMarket = %v, want %v", got, tt.want)
			}
		})
	}
}

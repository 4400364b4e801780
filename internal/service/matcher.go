package service

import (
	"math"
	"strings"
	"time"
)

// Match score weights. Team-name similarity dominates; kickoff-time
// proximity breaks ties between fixtures of the same clubs; a shared
// competition hint nudges the rest.
const (
	weightTeams       = 0.6
	weightDate        = 0.3
	weightCompetition = 0.1
)

// competitionHints are league tokens recognized in titles and tags on
// both venues.
var competitionHints = []string{
	"premier league", "epl",
	"la liga",
	"serie a",
	"bundesliga",
	"ligue 1",
	"champions league", "ucl",
	"europa league",
	"world cup",
	"mls",
	"copa",
}

// normalizeTitle lowercases a title and strips everything but letters,
// digits, and spaces.
func normalizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// extractTeams splits a fixture title into its two team names. Titles
// without a recognizable separator yield the whole normalized title as a
// single "team".
func extractTeams(title string) (string, string) {
	norm := normalizeTitle(title)
	for _, sep := range []string{" vs ", " v "} {
		if home, away, found := strings.Cut(norm, sep); found {
			return strings.TrimSpace(home), strings.TrimSpace(away)
		}
	}
	return norm, ""
}

// tokenSimilarity is the Dice coefficient over the two strings' token
// sets: 2|A∩B| / (|A|+|B|).
func tokenSimilarity(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	set := make(map[string]bool, len(ta))
	for _, tok := range ta {
		set[tok] = true
	}
	shared := 0
	for _, tok := range tb {
		if set[tok] {
			shared++
			set[tok] = false // count each shared token once
		}
	}

	return 2 * float64(shared) / float64(len(ta)+len(tb))
}

// teamOverlapScore scores how well two fixtures' team pairs line up,
// trying both orientations and keeping the better one.
func teamOverlapScore(aHome, aAway, bHome, bAway string) float64 {
	straight := (tokenSimilarity(aHome, bHome) + tokenSimilarity(aAway, bAway)) / 2
	crossed := (tokenSimilarity(aHome, bAway) + tokenSimilarity(aAway, bHome)) / 2
	return math.Max(straight, crossed)
}

// dateProximityScore scores the distance between two kickoff times.
// Either time being unknown scores zero.
func dateProximityScore(a, b time.Time) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	switch {
	case d <= 6*time.Hour:
		return 1.0
	case d <= 24*time.Hour:
		return 0.6
	case d <= 48*time.Hour:
		return 0.3
	default:
		return 0
	}
}

// competitionScore is 1 when both sides mention the same known league
// token, else 0.
func competitionScore(a, b string) float64 {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)
	for _, hint := range competitionHints {
		if strings.Contains(la, hint) && strings.Contains(lb, hint) {
			return 1
		}
	}
	return 0
}

// computeMatchScore combines the three signals into a [0,1] score
// rounded to three decimals.
func computeMatchScore(aTitle string, aTime time.Time, aContext string, bTitle string, bTime time.Time, bContext string) float64 {
	aHome, aAway := extractTeams(aTitle)
	bHome, bAway := extractTeams(bTitle)

	score := weightTeams*teamOverlapScore(aHome, aAway, bHome, bAway) +
		weightDate*dateProximityScore(aTime, bTime) +
		weightCompetition*competitionScore(aContext, bContext)

	return math.Round(score*1000) / 1000
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ad714/bookmirror/internal/domain"
)

// DefaultMinMatchScore is the score below which a candidate pairing is
// discarded.
const DefaultMinMatchScore = 0.5

// VenueSource lists the comparison venue's market catalog.
type VenueSource interface {
	AllMarkets(ctx context.Context) ([]domain.VenueMarket, error)
}

// MatchService pairs Fliq football questions with their counterparts on
// the comparison venue and persists the best-scoring pairs.
type MatchService struct {
	venue    VenueSource
	markets  domain.MarketStore
	matches  domain.MatchStore
	minScore float64
	logger   *slog.Logger
}

// NewMatchService creates a MatchService. A non-positive minScore falls
// back to the default threshold.
func NewMatchService(venue VenueSource, markets domain.MarketStore, matches domain.MatchStore, minScore float64, logger *slog.Logger) *MatchService {
	if minScore <= 0 {
		minScore = DefaultMinMatchScore
	}
	return &MatchService{
		venue:    venue,
		markets:  markets,
		matches:  matches,
		minScore: minScore,
		logger:   logger.With(slog.String("component", "match_service")),
	}
}

// Run scores every stored live question against the venue's football
// markets, keeps each question's best pairing above the threshold, and
// replaces the stored result set.
func (s *MatchService) Run(ctx context.Context) ([]domain.MarketMatch, error) {
	questions, err := s.markets.ListLive(ctx, domain.ListOpts{})
	if err != nil {
		return nil, fmt.Errorf("service: match run: list questions: %w", err)
	}

	venueMarkets, err := s.venue.AllMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: match run: list venue markets: %w", err)
	}

	football := make([]domain.VenueMarket, 0, len(venueMarkets))
	for _, vm := range venueMarkets {
		if IsFootballMarket(vm) {
			football = append(football, vm)
		}
	}

	now := time.Now().UTC()
	results := make([]domain.MarketMatch, 0, len(questions))
	for _, q := range questions {
		best, score := s.bestMatch(q, football)
		if score < s.minScore {
			continue
		}
		results = append(results, domain.MarketMatch{
			QuestionID: q.QuestionID,
			VenueID:    best.ID,
			FliqTitle:  q.Title(),
			VenueTitle: best.Title,
			Score:      score,
			MatchedAt:  now,
		})
	}

	if err := s.matches.Replace(ctx, results); err != nil {
		return nil, fmt.Errorf("service: match run: persist: %w", err)
	}

	s.logger.InfoContext(ctx, "match run complete",
		slog.Int("questions", len(questions)),
		slog.Int("venue_football", len(football)),
		slog.Int("matched", len(results)),
	)

	return results, nil
}

// List returns stored matches at or above minScore; a non-positive
// minScore uses the service threshold.
func (s *MatchService) List(ctx context.Context, minScore float64, opts domain.ListOpts) ([]domain.MarketMatch, error) {
	if minScore <= 0 {
		minScore = s.minScore
	}
	matches, err := s.matches.List(ctx, minScore, opts)
	if err != nil {
		return nil, fmt.Errorf("service: list matches: %w", err)
	}
	return matches, nil
}

func (s *MatchService) bestMatch(q domain.Market, candidates []domain.VenueMarket) (domain.VenueMarket, float64) {
	qContext := q.Category + " " + strings.Join(q.Tags, " ") + " " + q.ParentHeader

	var best domain.VenueMarket
	bestScore := -1.0
	for _, vm := range candidates {
		vmContext := vm.Description + " " + strings.Join(vm.Tags, " ")
		score := computeMatchScore(q.Title(), q.EndTime, qContext, vm.Title, vm.EndDate, vmContext)
		if score > bestScore {
			best = vm
			bestScore = score
		}
	}
	return best, bestScore
}

// IsFootballMarket reports whether a venue market looks like a football
// fixture: a two-team title plus a recognized league hint somewhere in
// its text or tags.
func IsFootballMarket(m domain.VenueMarket) bool {
	norm := " " + normalizeTitle(m.Title) + " "
	if !strings.Contains(norm, " vs ") && !strings.Contains(norm, " v ") {
		return false
	}

	haystack := strings.ToLower(m.Title + " " + m.Description + " " + strings.Join(m.Tags, " "))
	for _, hint := range competitionHints {
		if strings.Contains(haystack, hint) {
			return true
		}
	}
	return false
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ad714/bookmirror/internal/domain"
)

// MatchStore implements domain.MatchStore using PostgreSQL. Each matcher
// run replaces the previous result set in one transaction.
type MatchStore struct {
	pool *pgxpool.Pool
}

// NewMatchStore creates a MatchStore backed by the given connection pool.
func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{pool: pool}
}

// Replace swaps the stored match set for the given one atomically.
func (s *MatchStore) Replace(ctx context.Context, matches []domain.MarketMatch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: replace matches: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM market_matches`); err != nil {
		return fmt.Errorf("postgres: replace matches: clear: %w", err)
	}

	if len(matches) > 0 {
		batch := &pgx.Batch{}
		const query = `
			INSERT INTO market_matches (
				question_id, venue_id, fliq_title, venue_title, score, matched_at
			) VALUES ($1, $2, $3, $4, $5, $6)`
		for _, m := range matches {
			batch.Queue(query, m.QuestionID, m.VenueID, m.FliqTitle, m.VenueTitle, m.Score, m.MatchedAt)
		}

		br := tx.SendBatch(ctx, batch)
		for i := range matches {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("postgres: replace matches: insert item %d: %w", i, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("postgres: replace matches: close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: replace matches: commit: %w", err)
	}
	return nil
}

// List returns stored matches at or above minScore, best first.
func (s *MatchStore) List(ctx context.Context, minScore float64, opts domain.ListOpts) ([]domain.MarketMatch, error) {
	query := `SELECT question_id, venue_id, fliq_title, venue_title, score, matched_at
		FROM market_matches
		WHERE score >= $1
		ORDER BY score DESC, question_id ASC`
	args := []any{minScore}
	argIdx := 2

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.MarketMatch
	for rows.Next() {
		var m domain.MarketMatch
		if err := rows.Scan(&m.QuestionID, &m.VenueID, &m.FliqTitle, &m.VenueTitle, &m.Score, &m.MatchedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list matches rows: %w", err)
	}
	return matches, nil
}

// Compile-time interface check.
var _ domain.MatchStore = (*MatchStore)(nil)

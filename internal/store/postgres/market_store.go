package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ad714/bookmirror/internal/domain"
)

// MarketStore implements domain.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a MarketStore backed by the given connection pool.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

const upsertQuestionQuery = `
	INSERT INTO questions (
		question_id, header, parent_id, parent_header, category, tags,
		lot_size, tick_size, decimals, is_settled, settlement_price,
		contract_address, yes_market_id, no_market_id, end_time, image_url,
		updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12, $13, $14, $15, $16, NOW()
	)
	ON CONFLICT (question_id) DO UPDATE SET
		header           = EXCLUDED.header,
		parent_id        = EXCLUDED.parent_id,
		parent_header    = EXCLUDED.parent_header,
		category         = EXCLUDED.category,
		tags             = EXCLUDED.tags,
		lot_size         = EXCLUDED.lot_size,
		tick_size        = EXCLUDED.tick_size,
		decimals         = EXCLUDED.decimals,
		is_settled       = EXCLUDED.is_settled,
		settlement_price = EXCLUDED.settlement_price,
		contract_address = EXCLUDED.contract_address,
		yes_market_id    = EXCLUDED.yes_market_id,
		no_market_id     = EXCLUDED.no_market_id,
		end_time         = EXCLUDED.end_time,
		image_url        = EXCLUDED.image_url,
		updated_at       = NOW()`

// UpsertBatch inserts or updates multiple questions in a single batch.
func (s *MarketStore) UpsertBatch(ctx context.Context, markets []domain.Market) error {
	if len(markets) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, m := range markets {
		batch.Queue(upsertQuestionQuery,
			m.QuestionID, m.Header, m.ParentID, m.ParentHeader, m.Category, m.Tags,
			m.LotSize, m.TickSize, m.Decimals, m.IsSettled, m.SettlementPrice,
			m.ContractAddress, m.YesMarketID, m.NoMarketID, nullableTime(m.EndTime), m.ImageURL,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range markets {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert question batch item %d: %w", i, err)
		}
	}
	return nil
}

const questionCols = `question_id, header, parent_id, parent_header, category, tags,
	lot_size, tick_size, decimals, is_settled, settlement_price,
	contract_address, yes_market_id, no_market_id, end_time, image_url, updated_at`

// GetByID retrieves a question by its primary key.
func (s *MarketStore) GetByID(ctx context.Context, questionID string) (domain.Market, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+questionCols+` FROM questions WHERE question_id = $1`, questionID)
	m, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("postgres: get question %s: %w", questionID, err)
	}
	return m, nil
}

// ListLive returns unsettled questions with a future end time, soonest
// ending first.
func (s *MarketStore) ListLive(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	query := `SELECT ` + questionCols + ` FROM questions
		WHERE is_settled = FALSE AND end_time > NOW()
		ORDER BY end_time ASC`
	args := []any{}
	argIdx := 1

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
		return nil, fmt.Errorf("postgres: list live questions: %w", err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		m, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan live question: %w", err)
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list live questions rows: %w", err)
	}
	return markets, nil
}

// Count returns the number of unsettled questions with a future end time.
func (s *MarketStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE is_settled = FALSE AND end_time > NOW()`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count questions: %w", err)
	}
	return count, nil
}

// scanQuestion scans a single question row into a domain.Market.
func scanQuestion(row pgx.Row) (domain.Market, error) {
	var m domain.Market
	var endTime *time.Time
	err := row.Scan(
		&m.QuestionID, &m.Header, &m.ParentID, &m.ParentHeader, &m.Category, &m.Tags,
		&m.LotSize, &m.TickSize, &m.Decimals, &m.IsSettled, &m.SettlementPrice,
		&m.ContractAddress, &m.YesMarketID, &m.NoMarketID, &endTime, &m.ImageURL,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.Market{}, err
	}
	if endTime != nil {
		m.EndTime = *endTime
	}
	return m, nil
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Compile-time interface check.
var _ domain.MarketStore = (*MarketStore)(nil)

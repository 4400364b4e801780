package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ad714/bookmirror/internal/domain"
)

const marketTTL = 5 * time.Minute

// MarketCache implements domain.MarketCache using JSON-serialized
// question records with a secondary outcome-market index.
//
// Key schema:
//
//	question:{id}           - hash with field "data" containing JSON
//	question:market:{mktID} - string value of the owning question ID
type MarketCache struct {
	rdb *redis.Client
}

// NewMarketCache creates a MarketCache backed by the given Client.
func NewMarketCache(c *Client) *MarketCache {
	return &MarketCache{rdb: c.Underlying()}
}

func questionKey(id string) string        { return "question:" + id }
func questionMarketKey(mkt string) string { return "question:market:" + mkt }

// Set stores a question with a 5-minute TTL and indexes both of its
// outcome market IDs back to it.
func (mc *MarketCache) Set(ctx context.Context, market domain.Market) error {
	data, err := json.Marshal(market)
	if err != nil {
		return fmt.Errorf("redis: marshal question %s: %w", market.QuestionID, err)
	}

	key := questionKey(market.QuestionID)

	pipe := mc.rdb.TxPipeline()
	pipe.HSet(ctx, key, "data", data)
	pipe.Expire(ctx, key, marketTTL)

	for _, mktID := range []string{market.YesMarketID, market.NoMarketID} {
		if mktID == "" {
			continue
		}
		pipe.Set(ctx, questionMarketKey(mktID), market.QuestionID, marketTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set question %s: %w", market.QuestionID, err)
	}
	return nil
}

// Get retrieves a question by its ID. It returns domain.ErrNotFound when
// the key does not exist.
func (mc *MarketCache) Get(ctx context.Context, questionID string) (domain.Market, error) {
	data, err := mc.rdb.HGet(ctx, questionKey(questionID), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("redis: get question %s: %w", questionID, err)
	}

	var market domain.Market
	if err := json.Unmarshal(data, &market); err != nil {
		return domain.Market{}, fmt.Errorf("redis: unmarshal question %s: %w", questionID, err)
	}
	return market, nil
}

// GetByMarketID looks up the question owning one of the two outcome
// markets.
func (mc *MarketCache) GetByMarketID(ctx context.Context, marketID string) (domain.Market, error) {
	questionID, err := mc.rdb.Get(ctx, questionMarketKey(marketID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("redis: get question by market %s: %w", marketID, err)
	}

	return mc.Get(ctx, questionID)
}

// Invalidate removes a question and its outcome-market index entries.
func (mc *MarketCache) Invalidate(ctx context.Context, questionID string) error {
	market, err := mc.Get(ctx, questionID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("redis: invalidate question %s: %w", questionID, err)
	}

	pipe := mc.rdb.TxPipeline()
	pipe.Del(ctx, questionKey(questionID))

	if err == nil {
		for _, mktID := range []string{market.YesMarketID, market.NoMarketID} {
			if mktID == "" {
				continue
			}
			pipe.Del(ctx, questionMarketKey(mktID))
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: invalidate question %s: %w", questionID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.MarketCache = (*MarketCache)(nil)

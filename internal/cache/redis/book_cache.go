package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ad714/bookmirror/internal/domain"
)

// bookTTL keeps stale books from lingering after a market stops being
// polled.
const bookTTL = 2 * time.Minute

// BookCache implements domain.BookCache using Redis sorted sets and
// hashes per outcome market. Books are whole-snapshot replacements.
//
// Key schema:
//
//	levels:{marketID}:bids     - sorted set of bid ticks (score = ticks)
//	levels:{marketID}:asks     - sorted set of ask ticks (score = ticks)
//	levels:{marketID}:bid:size - hash mapping ticks -> size
//	levels:{marketID}:ask:size - hash mapping ticks -> size
//	levels:{marketID}:meta     - hash with "outcome" and "fetched_at"
type BookCache struct {
	rdb *redis.Client
}

// NewBookCache creates a BookCache backed by the given Client.
func NewBookCache(c *Client) *BookCache {
	return &BookCache{rdb: c.Underlying()}
}

func levelsBidsKey(id string) string    { return "levels:" + id + ":bids" }
func levelsAsksKey(id string) string    { return "levels:" + id + ":asks" }
func levelsBidSizeKey(id string) string { return "levels:" + id + ":bid:size" }
func levelsAskSizeKey(id string) string { return "levels:" + id + ":ask:size" }
func levelsMetaKey(id string) string    { return "levels:" + id + ":meta" }

// SetBook atomically replaces the cached book for one outcome market.
func (bc *BookCache) SetBook(ctx context.Context, book domain.OutcomeBook) error {
	id := book.MarketID
	bidsKey := levelsBidsKey(id)
	asksKey := levelsAsksKey(id)
	bidSizeKey := levelsBidSizeKey(id)
	askSizeKey := levelsAskSizeKey(id)
	metaKey := levelsMetaKey(id)

	pipe := bc.rdb.TxPipeline()

	pipe.Del(ctx, bidsKey, asksKey, bidSizeKey, askSizeKey, metaKey)

	for _, lvl := range book.Bids {
		ticksStr := strconv.Itoa(lvl.PriceTicks)
		pipe.ZAdd(ctx, bidsKey, redis.Z{Score: float64(lvl.PriceTicks), Member: ticksStr})
		pipe.HSet(ctx, bidSizeKey, ticksStr, strconv.FormatFloat(lvl.Size, 'f', -1, 64))
	}
	for _, lvl := range book.Asks {
		ticksStr := strconv.Itoa(lvl.PriceTicks)
		pipe.ZAdd(ctx, asksKey, redis.Z{Score: float64(lvl.PriceTicks), Member: ticksStr})
		pipe.HSet(ctx, askSizeKey, ticksStr, strconv.FormatFloat(lvl.Size, 'f', -1, 64))
	}

	pipe.HSet(ctx, metaKey,
		"outcome", string(book.Outcome),
		"fetched_at", strconv.FormatInt(book.FetchedAt.UnixNano(), 10),
	)

	for _, key := range []string{bidsKey, asksKey, bidSizeKey, askSizeKey, metaKey} {
		pipe.Expire(ctx, key, bookTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set book %s: %w", id, err)
	}
	return nil
}

// GetBook reconstructs the cached book for one outcome market, bids
// best-first descending and asks best-first ascending. It returns
// domain.ErrNotFound when nothing is cached.
func (bc *BookCache) GetBook(ctx context.Context, marketID string) (domain.OutcomeBook, error) {
	pipe := bc.rdb.Pipeline()

	bidsCmd := pipe.ZRevRange(ctx, levelsBidsKey(marketID), 0, -1)
	asksCmd := pipe.ZRange(ctx, levelsAsksKey(marketID), 0, -1)
	bidSizeCmd := pipe.HGetAll(ctx, levelsBidSizeKey(marketID))
	askSizeCmd := pipe.HGetAll(ctx, levelsAskSizeKey(marketID))
	metaCmd := pipe.HGetAll(ctx, levelsMetaKey(marketID))

	if _, err := pipe.Exec(ctx); err != nil {
		return domain.OutcomeBook{}, fmt.Errorf("redis: get book %s: %w", marketID, err)
	}

	meta := metaCmd.Val()
	if len(meta) == 0 {
		return domain.OutcomeBook{}, domain.ErrNotFound
	}

	book := domain.OutcomeBook{
		MarketID: marketID,
		Outcome:  domain.Outcome(meta["outcome"]),
	}
	if ns, err := strconv.ParseInt(meta["fetched_at"], 10, 64); err == nil {
		book.FetchedAt = time.Unix(0, ns).UTC()
	}

	book.Bids = assembleLevels(bidsCmd.Val(), bidSizeCmd.Val(), domain.SideBid, book.Outcome)
	book.Asks = assembleLevels(asksCmd.Val(), askSizeCmd.Val(), domain.SideAsk, book.Outcome)

	return book, nil
}

func assembleLevels(ticks []string, sizes map[string]string, side domain.Side, outcome domain.Outcome) []domain.PriceLevel {
	if len(ticks) == 0 {
		return nil
	}

	out := make([]domain.PriceLevel, 0, len(ticks))
	for _, t := range ticks {
		tick, err := strconv.Atoi(t)
		if err != nil {
			continue
		}
		size, err := strconv.ParseFloat(sizes[t], 64)
		if err != nil || size <= 0 {
			continue
		}
		out = append(out, domain.PriceLevel{
			Side:          side,
			PriceTicks:    tick,
			Size:          size,
			SourceOutcome: outcome,
		})
	}
	return out
}

// Compile-time interface check.
var _ domain.BookCache = (*BookCache)(nil)

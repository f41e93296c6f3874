package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultHistoryLen matches the detector's input contract: the most recent
// 30 or fewer observations per product.
const DefaultHistoryLen = 30

// HistoryStore keeps a rolling list of observed prices per product in Redis
// so the caller can hand the detector its history without touching the
// primary database.
type HistoryStore struct {
	client *redis.Client
	maxLen int64
	logger zerolog.Logger
}

// NewHistoryStore wraps a Redis client. maxLen <= 0 uses DefaultHistoryLen.
func NewHistoryStore(client *redis.Client, maxLen int64) *HistoryStore {
	if maxLen <= 0 {
		maxLen = DefaultHistoryLen
	}
	return &HistoryStore{
		client: client,
		maxLen: maxLen,
		logger: log.With().Str("component", "history_store").Logger(),
	}
}

func historyKey(productID string) string {
	return "history:" + productID
}

// Push records a price for a product, trimming the list to the rolling
// window length.
func (s *HistoryStore) Push(ctx context.Context, productID string, price float64) error {
	key := historyKey(productID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, price)
	pipe.LTrim(ctx, key, 0, s.maxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pushing price history: %w", err)
	}
	return nil
}

// History returns the recorded prices for a product, newest first. A product
// with no history yields an empty slice, not an error.
func (s *HistoryStore) History(ctx context.Context, productID string) ([]float64, error) {
	values, err := s.client.LRange(ctx, historyKey(productID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading price history: %w", err)
	}

	prices := make([]float64, 0, len(values))
	for _, v := range values {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.logger.Warn().Str("product_id", productID).Str("value", v).Msg("skipping unparseable history entry")
			continue
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// Package cache keeps recent analyses so repeated lookups for the same symbol
// within the TTL skip the price source.
package cache

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL matches the quote refresh interval of the bot.
const DefaultTTL = 5 * time.Minute

// Cache stores JSON-serialisable values with a TTL.
type Cache interface {
	// Get decodes the value under key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// StockKey returns the cache key for a symbol's analysis.
func StockKey(symbol string) string {
	return "stock_" + strings.ToUpper(strings.TrimSpace(symbol))
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// MonthCache caches rendered month grids in Redis. Month views are read
// far more often than windows change, so grids live under a short TTL
// and are invalidated whenever a window on that month is written.
type MonthCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewMonthCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *MonthCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MonthCache{rdb: rdb, ttl: ttl, logger: logger}
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("calendar:month:%04d-%02d", year, int(month))
}

// Get returns the cached grid bytes, or (nil, false) on miss or error.
// Cache failures degrade to a store read, never to a request failure.
func (c *MonthCache) Get(ctx context.Context, year int, month time.Month) ([]byte, bool) {
	raw, err := c.rdb.Get(ctx, monthKey(year, month)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("month cache read failed", "error", err)
		}
		return nil, false
	}
	return raw, true
}

func (c *MonthCache) Set(ctx context.Context, year int, month time.Month, grid any) {
	raw, err := json.Marshal(grid)
	if err != nil {
		c.logger.Warn("month cache marshal failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, monthKey(year, month), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("month cache write failed", "error", err)
	}
}

// Invalidate drops the grid for the month containing the given date.
func (c *MonthCache) Invalidate(ctx context.Context, date time.Time) {
	if err := c.rdb.Del(ctx, monthKey(date.Year(), date.Month())).Err(); err != nil {
		c.logger.Warn("month cache invalidate failed", "error", err)
	}
}

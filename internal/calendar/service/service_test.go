package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paylane/internal/calendar"
	calstore "paylane/internal/calendar/store"
	id "paylane/pkg/domain"
)

type fakeCache struct {
	entries map[string][]byte
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func cacheKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func (c *fakeCache) Get(_ context.Context, year int, month time.Month) ([]byte, bool) {
	raw, ok := c.entries[cacheKey(year, month)]
	if ok {
		c.hits++
	}
	return raw, ok
}

func (c *fakeCache) Set(_ context.Context, year int, month time.Month, grid any) {
	raw, err := json.Marshal(grid)
	if err != nil {
		return
	}
	c.entries[cacheKey(year, month)] = raw
}

func (c *fakeCache) Invalidate(_ context.Context, date time.Time) {
	delete(c.entries, cacheKey(date.Year(), date.Month()))
}

type staticSessions struct {
	sessions []calendar.DaySession
}

func (s *staticSessions) SessionsBetween(_ context.Context, _, _ time.Time) ([]calendar.DaySession, error) {
	return s.sessions, nil
}

func TestMonthViewOverlaysFreshSessions(t *testing.T) {
	cache := newFakeCache()
	src := &staticSessions{}
	svc := New(calstore.NewInMemory(),
		WithSessionSource(src),
		WithCache(cache),
		WithLogger(slog.New(slog.DiscardHandler)),
	)
	ctx := context.Background()

	_, err := svc.CreateFullDayWindow(ctx, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "offsite")
	require.NoError(t, err)

	// First read fills the cache.
	days, err := svc.MonthView(ctx, 2025, time.March)
	require.NoError(t, err)
	require.Len(t, days, 31)
	assert.True(t, days[9].FullyBlocked)
	require.Len(t, cache.entries, 1)

	// A booking lands while the grid is still cached.
	booked := calendar.DaySession{
		ID: id.SessionID(uuid.New()),
		At: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC),
	}
	src.sessions = append(src.sessions, booked)

	days, err = svc.MonthView(ctx, 2025, time.March)
	require.NoError(t, err)
	assert.Positive(t, cache.hits, "second read should serve the grid from cache")
	require.Len(t, days[11].Sessions, 1)
	assert.Equal(t, booked.ID, days[11].Sessions[0].ID)

	// The cached payload never carries sessions; only the window projection
	// is reused across reads.
	var cached []calendar.Day
	require.NoError(t, json.Unmarshal(cache.entries[cacheKey(2025, time.March)], &cached))
	for _, day := range cached {
		assert.Empty(t, day.Sessions)
	}
}

func TestWindowWritesInvalidateCachedMonth(t *testing.T) {
	cache := newFakeCache()
	svc := New(calstore.NewInMemory(),
		WithCache(cache),
		WithLogger(slog.New(slog.DiscardHandler)),
	)
	ctx := context.Background()

	_, err := svc.MonthView(ctx, 2025, time.March)
	require.NoError(t, err)
	require.Len(t, cache.entries, 1)

	_, err = svc.CreateFullDayWindow(ctx, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), "audit day")
	require.NoError(t, err)
	assert.Empty(t, cache.entries)
}

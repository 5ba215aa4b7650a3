package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"paylane/internal/calendar/models"
	id "paylane/pkg/domain"
	"paylane/pkg/platform/sentinel"
)

// InMemory keeps blackout windows in a map. Used by unit tests and as
// the fallback when no database is configured.
type InMemory struct {
	mu      sync.RWMutex
	windows map[id.WindowID]*models.BlackoutWindow
}

func NewInMemory() *InMemory {
	return &InMemory{windows: make(map[id.WindowID]*models.BlackoutWindow)}
}

func (s *InMemory) Create(_ context.Context, w *models.BlackoutWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.windows[w.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *w
	s.windows[w.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, windowID id.WindowID) (*models.BlackoutWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.windows[windowID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

// ListBetween returns windows whose date falls in [from, to] inclusive,
// ordered by date.
func (s *InMemory) ListBetween(_ context.Context, from, to time.Time) ([]*models.BlackoutWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from, to = models.DateOnly(from), models.DateOnly(to)
	var out []*models.BlackoutWindow
	for _, w := range s.windows {
		if w.Date.Before(from) || w.Date.After(to) {
			continue
		}
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *InMemory) ListOnDate(ctx context.Context, date time.Time) ([]*models.BlackoutWindow, error) {
	return s.ListBetween(ctx, date, date)
}

func (s *InMemory) Delete(_ context.Context, windowID id.WindowID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.windows[windowID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.windows, windowID)
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"paylane/internal/calendar"
	calmetrics "paylane/internal/calendar/metrics"
	"paylane/internal/calendar/models"
	id "paylane/pkg/domain"
	dErrors "paylane/pkg/domain-errors"
	"paylane/pkg/platform/sentinel"
	"paylane/pkg/requestcontext"
)

// WindowStore persists blackout windows.
type WindowStore interface {
	Create(ctx context.Context, w *models.BlackoutWindow) error
	FindByID(ctx context.Context, windowID id.WindowID) (*models.BlackoutWindow, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*models.BlackoutWindow, error)
	ListOnDate(ctx context.Context, date time.Time) ([]*models.BlackoutWindow, error)
	Delete(ctx context.Context, windowID id.WindowID) error
}

// SessionSource supplies booked sessions for the month view. Wired to
// the booking store through an adapter so the calendar never depends on
// booking internals.
type SessionSource interface {
	SessionsBetween(ctx context.Context, from, to time.Time) ([]calendar.DaySession, error)
}

// MonthCache caches rendered month grids. Optional.
type MonthCache interface {
	Get(ctx context.Context, year int, month time.Month) ([]byte, bool)
	Set(ctx context.Context, year int, month time.Month, grid any)
	Invalidate(ctx context.Context, date time.Time)
}

// Service manages the availability calendar: administrator blackout
// windows, the month grid, and slot validation for bookings.
type Service struct {
	windows  WindowStore
	sessions SessionSource
	cache    MonthCache
	logger   *slog.Logger
	metrics  *calmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithSessionSource(src SessionSource) Option {
	return func(s *Service) { s.sessions = src }
}

func WithCache(cache MonthCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithMetrics(m *calmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(windows WindowStore, opts ...Option) *Service {
	s := &Service{windows: windows, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateFullDayWindow blocks an entire date.
func (s *Service) CreateFullDayWindow(ctx context.Context, date time.Time, reason string) (*models.BlackoutWindow, error) {
	w, err := models.NewFullDayWindow(id.WindowID(uuid.New()), date, reason)
	if err != nil {
		return nil, err
	}
	return s.createWindow(ctx, w)
}

// CreatePartialWindow blocks a time range on a date.
func (s *Service) CreatePartialWindow(ctx context.Context, date time.Time, start, end models.TimeOfDay, reason string) (*models.BlackoutWindow, error) {
	w, err := models.NewPartialWindow(id.WindowID(uuid.New()), date, start, end, reason)
	if err != nil {
		return nil, err
	}
	return s.createWindow(ctx, w)
}

func (s *Service) createWindow(ctx context.Context, w *models.BlackoutWindow) (*models.BlackoutWindow, error) {
	if err := s.windows.Create(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create window")
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, w.Date)
	}
	if s.metrics != nil {
		s.metrics.WindowsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "blackout window created",
		"request_id", requestcontext.RequestID(ctx),
		"window_id", w.ID,
		"date", w.Date.Format("2006-01-02"),
		"full_day", w.FullDay,
	)
	return w, nil
}

// DeleteWindow removes a blackout window.
func (s *Service) DeleteWindow(ctx context.Context, windowID id.WindowID) error {
	w, err := s.windows.FindByID(ctx, windowID)
	if err != nil {
		return wrapWindowErr(err)
	}
	if err := s.windows.Delete(ctx, windowID); err != nil {
		return wrapWindowErr(err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, w.Date)
	}
	return nil
}

// ListWindows returns the windows inside one calendar month.
func (s *Service) ListWindows(ctx context.Context, year int, month time.Month) ([]*models.BlackoutWindow, error) {
	from, to := monthBounds(year, month)
	windows, err := s.windows.ListBetween(ctx, from, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list windows")
	}
	return windows, nil
}

// MonthView renders the grid for one month. Only the window projection is
// cacheable: window writes invalidate it, while bookings land between
// invalidations, so sessions are overlaid fresh on every read.
func (s *Service) MonthView(ctx context.Context, year int, month time.Month) ([]calendar.Day, error) {
	days, err := s.monthGrid(ctx, year, month)
	if err != nil {
		return nil, err
	}

	var sessions []calendar.DaySession
	if s.sessions != nil {
		from, to := monthBounds(year, month)
		sessions, err = s.sessions.SessionsBetween(ctx, from, to.Add(24*time.Hour))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
		}
	}
	return calendar.OverlaySessions(days, sessions), nil
}

// monthGrid loads the session-free window projection, serving from cache
// when it is fresh.
func (s *Service) monthGrid(ctx context.Context, year int, month time.Month) ([]calendar.Day, error) {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, year, month); ok {
			var days []calendar.Day
			if err := json.Unmarshal(raw, &days); err == nil {
				if s.metrics != nil {
					s.metrics.MonthCache.WithLabelValues("hit").Inc()
				}
				return days, nil
			}
			s.logger.WarnContext(ctx, "discarding unreadable cached month grid", "year", year, "month", month)
		}
		if s.metrics != nil {
			s.metrics.MonthCache.WithLabelValues("miss").Inc()
		}
	}

	from, to := monthBounds(year, month)
	windows, err := s.windows.ListBetween(ctx, from, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list windows")
	}
	days := calendar.GenerateMonth(year, month, windows, nil)
	if s.cache != nil {
		s.cache.Set(ctx, year, month, days)
	}
	return days, nil
}

// ValidateSlot checks a proposed booking slot against today's date and
// the blackout windows on the slot's date.
func (s *Service) ValidateSlot(ctx context.Context, date time.Time, timeOfDay *models.TimeOfDay) error {
	windows, err := s.windows.ListOnDate(ctx, date)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load windows")
	}
	err = calendar.ValidateSlot(requestcontext.Now(ctx), date, timeOfDay, windows)
	if s.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "rejected"
		}
		s.metrics.SlotValidations.WithLabelValues(outcome).Inc()
	}
	return err
}

func monthBounds(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return from, to
}

func wrapWindowErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "window not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "window already exists")
	default:
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "window store failure")
	}
}

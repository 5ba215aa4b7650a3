package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	bookinghandler "paylane/internal/booking/handler"
	bookingmetrics "paylane/internal/booking/metrics"
	bookingservice "paylane/internal/booking/service"
	bookingstore "paylane/internal/booking/store"
	caladapters "paylane/internal/calendar/adapters"
	calhandler "paylane/internal/calendar/handler"
	calmetrics "paylane/internal/calendar/metrics"
	calmodels "paylane/internal/calendar/models"
	calservice "paylane/internal/calendar/service"
	calstore "paylane/internal/calendar/store"
	clienthandler "paylane/internal/client/handler"
	clientmetrics "paylane/internal/client/metrics"
	clientservice "paylane/internal/client/service"
	clientstore "paylane/internal/client/store"
	comphandler "paylane/internal/compliance/handler"
	compmetrics "paylane/internal/compliance/metrics"
	compservice "paylane/internal/compliance/service"
	compstore "paylane/internal/compliance/store"
	elighandler "paylane/internal/eligibility/handler"
	eligmetrics "paylane/internal/eligibility/metrics"
	eligservice "paylane/internal/eligibility/service"
	feeshandler "paylane/internal/fees/handler"
	"paylane/internal/overview"
	"paylane/internal/payment"
	"paylane/internal/platform/config"
	"paylane/internal/platform/httpserver"
	"paylane/internal/platform/postgres"
	platformredis "paylane/internal/platform/redis"
	schedhandler "paylane/internal/schedule/handler"
	schedmetrics "paylane/internal/schedule/metrics"
	schedservice "paylane/internal/schedule/service"
	"paylane/pkg/platform/events"
	eventspublisher "paylane/pkg/platform/events/publisher"
	kafkasink "paylane/pkg/platform/events/publishers/kafka"
	eventsmemory "paylane/pkg/platform/events/store/memory"
	eventsworker "paylane/pkg/platform/events/worker"
	adminmw "paylane/pkg/platform/middleware/admin"
	authmw "paylane/pkg/platform/middleware/auth"
	requestidmw "paylane/pkg/platform/middleware/requestid"
	requesttimemw "paylane/pkg/platform/middleware/requesttime"
)

// sessionStore is the union of the slices of the booking store the other
// features consume.
type sessionStore interface {
	bookingservice.SessionStore
	overview.SessionLister
	caladapters.SessionLister
}

// windowStore is the calendar store plus the overview's read slice.
type windowStore interface {
	calservice.WindowStore
	overview.WindowLister
}

// issueStore is the compliance store plus the overview's read slice.
type issueStore interface {
	compservice.IssueStore
	overview.IssueLister
}

func main() {
	cfg := config.FromEnv()
	logger := newLogger(cfg.Env)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	// Storage. Absent DATABASE_URL runs everything in memory.
	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	var (
		clients  clientservice.ClientStore
		sessions sessionStore
		windows  windowStore
		issues   issueStore
	)
	if db != nil {
		defer db.Close()
		clientsPG := clientstore.NewPostgres(db)
		sessionsPG := bookingstore.NewPostgres(db)
		windowsPG := calstore.NewPostgres(db)
		issuesPG := compstore.NewPostgres(db)
		for _, m := range []interface {
			Migrate(context.Context) error
		}{clientsPG, sessionsPG, windowsPG, issuesPG} {
			if err := m.Migrate(ctx); err != nil {
				logger.Error("migration failed", "error", err)
				os.Exit(1)
			}
		}
		clients, sessions, windows, issues = clientsPG, sessionsPG, windowsPG, issuesPG
		logger.Info("using postgres storage")
	} else {
		clients = clientstore.NewInMemory()
		sessions = bookingstore.NewInMemory()
		windows = calstore.NewInMemory()
		issues = compstore.NewInMemory()
		logger.Info("using in-memory storage")
	}

	// Notification pipeline: publisher fills the inbox, the worker drains
	// it into the configured sink.
	var sink events.Sink = eventsmemory.NewInMemorySink()
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := kafkasink.NewSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logger.Error("kafka sink init failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		sink = kafka
		logger.Info("publishing notifications to kafka", "topic", cfg.KafkaTopic)
	}
	inbox := make(chan events.Event, 256)
	publisher := eventspublisher.New(inbox, logger)
	worker := eventsworker.New(sink, inbox, logger)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event worker stopped", "error", err)
		}
	}()

	// Services.
	clientSvc := clientservice.New(clients,
		clientservice.WithLogger(logger),
		clientservice.WithPublisher(publisher),
		clientservice.WithMetrics(clientmetrics.New(reg)),
	)
	eligSvc := eligservice.New(clients,
		eligservice.WithLogger(logger),
		eligservice.WithMetrics(eligmetrics.New(reg)),
	)

	calOpts := []calservice.Option{
		calservice.WithLogger(logger),
		calservice.WithMetrics(calmetrics.New(reg)),
		calservice.WithSessionSource(caladapters.NewBookingSessions(sessions)),
	}
	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		calOpts = append(calOpts, calservice.WithCache(calstore.NewMonthCache(rdb.Client, cfg.Redis.MonthTTL, logger)))
		logger.Info("month grid cache enabled")
	}
	calSvc := calservice.New(windows, calOpts...)

	bookingSvc := bookingservice.New(sessions, eligSvc, slotValidator{calSvc},
		bookingservice.WithLogger(logger),
		bookingservice.WithPublisher(publisher),
		bookingservice.WithMetrics(bookingmetrics.New(reg)),
	)
	compSvc := compservice.New(issues,
		compservice.WithLogger(logger),
		compservice.WithPublisher(publisher),
		compservice.WithMetrics(compmetrics.New(reg)),
	)
	schedSvc := schedservice.New(clientSvc, eligSvc, payment.NewStubCharger(), cfg.MinLeadDays,
		schedservice.WithLogger(logger),
		schedservice.WithPublisher(publisher),
		schedservice.WithMetrics(schedmetrics.New(reg)),
	)
	overviewSvc := overview.New(sessions, issues, windows)

	// HTTP surface.
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestidmw.Middleware)
	r.Use(requesttimemw.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	clientH := clienthandler.New(clientSvc, logger)
	calH := calhandler.New(calSvc, logger)
	compH := comphandler.New(compSvc, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authmw.RequireClient([]byte(cfg.JWTSigningKey), logger))
		clientH.RegisterClient(r)
		elighandler.New(eligSvc, logger).RegisterClient(r)
		feeshandler.New(logger).RegisterClient(r)
		calH.RegisterClient(r)
		bookinghandler.New(bookingSvc, logger).RegisterClient(r)
		schedhandler.New(schedSvc, logger).RegisterClient(r)
		compH.RegisterClient(r)
	})
	r.Route("/admin/v1", func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(cfg.AdminToken, logger))
		clientH.RegisterAdmin(r)
		calH.RegisterAdmin(r)
		compH.RegisterAdmin(r)
		overview.NewHandler(overviewSvc, logger).RegisterAdmin(r)
	})

	srv := httpserver.New(cfg.Addr, r)
	go func() {
		logger.Info("paylane listening", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	<-workerDone
}

// slotValidator narrows the calendar service to the booking port.
type slotValidator struct {
	cal *calservice.Service
}

func (v slotValidator) ValidateSlot(ctx context.Context, date time.Time, tod *calmodels.TimeOfDay) error {
	return v.cal.ValidateSlot(ctx, date, tod)
}

func newLogger(env string) *slog.Logger {
	var handler slog.Handler
	if env == "development" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

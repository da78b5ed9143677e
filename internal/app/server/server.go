package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"leaveportal/internal/domain/audit"
	"leaveportal/internal/domain/auth"
	"leaveportal/internal/domain/core"
	"leaveportal/internal/domain/leave"
	"leaveportal/internal/domain/notifications"
	"leaveportal/internal/domain/report"
	"leaveportal/internal/platform/config"
	"leaveportal/internal/platform/db"
	"leaveportal/internal/platform/email"
	"leaveportal/internal/platform/jobs"
	"leaveportal/internal/platform/metrics"
	"leaveportal/internal/transport/http/api"
	audithandler "leaveportal/internal/transport/http/handlers/audit"
	authhandler "leaveportal/internal/transport/http/handlers/auth"
	corehandler "leaveportal/internal/transport/http/handlers/core"
	leavehandler "leaveportal/internal/transport/http/handlers/leave"
	notificationshandler "leaveportal/internal/transport/http/handlers/notifications"
	reportshandler "leaveportal/internal/transport/http/handlers/reports"
	"leaveportal/internal/transport/http/middleware"
)

// AuditLog both records mutations and serves them back to admins.
type AuditLog interface {
	leavehandler.AuditRecorder
	audithandler.EventLister
}

// Notifications announces leave changes and serves the inbox.
type Notifications interface {
	leavehandler.Notifier
	notificationshandler.Inbox
}

// Deps are the stores the router is built over. Ready reports whether the
// backing database answers; nil means always ready. A nil Audit disables the
// trail and its routes, and a nil Notifications does the same for the inbox.
type Deps struct {
	Users         authhandler.Accounts
	Roster        corehandler.Directory
	Requests      leave.StoreAPI
	Idempotency   middleware.IdempotencyChecker
	Audit         AuditLog
	Notifications Notifications
	Jobs          notificationshandler.JobRunner
	Metrics       *metrics.Collector
	Ready         func(ctx context.Context) error
	Now           func() time.Time
	AccessLog     *log.Logger
}

type App struct {
	Config        config.Config
	DB            *pgxpool.Pool
	Router        http.Handler
	Jobs          *jobs.Service
	Notifications *notifications.Service
}

// New connects to the database, applies migrations and the seed when
// enabled, and builds the router over the pgx stores.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}
	roster := core.NewStore(pool)
	requests := leave.NewStore(pool)
	notifier := notifications.New(notifications.NewStore(pool), roster, requests, email.New(cfg), cfg.EmailFrom, cfg.ContractMonths)
	jobSvc := jobs.New(pool)

	router := NewRouter(cfg, Deps{
		Users:         auth.NewStore(pool),
		Roster:        roster,
		Requests:      requests,
		Idempotency:   middleware.NewIdempotencyStore(pool),
		Audit:         audit.New(pool),
		Notifications: notifier,
		Jobs:          jobSvc,
		Metrics:       collector,
		Ready:         pool.Ping,
	})
	return &App{Config: cfg, DB: pool, Router: router, Jobs: jobSvc, Notifications: notifier}, nil
}

// startJobs runs the job worker and schedules the contract reminder pass.
func (a *App) startJobs(ctx context.Context) {
	if a.Jobs == nil {
		return
	}
	a.Jobs.Start(ctx)
	if a.Notifications == nil || a.Config.ReminderInterval <= 0 {
		return
	}
	a.Jobs.Every(ctx, jobs.JobContractReminders, a.Config.ReminderInterval, func(ctx context.Context) (any, error) {
		return a.Notifications.ContractReminders(ctx)
	})
	slog.Info("contract reminders scheduled", "interval", a.Config.ReminderInterval)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.startJobs(ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("leave portal listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func NewRouter(cfg config.Config, deps Deps) http.Handler {
	leaveSvc := leave.NewService(deps.Requests, deps.Roster, cfg.ContractMonths)
	reportSvc := report.NewService(deps.Requests, deps.Roster, cfg.ContractMonths)
	if deps.Now != nil {
		leaveSvc.Now = deps.Now
		reportSvc.Now = deps.Now
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.Logger(deps.AccessLog))
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMin, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ready(ctx); err != nil {
				slog.Warn("readiness check failed", "err", err)
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		var recorder corehandler.AuditRecorder
		if deps.Audit != nil {
			recorder = deps.Audit
		}
		authHandler := authhandler.NewHandler(deps.Users, cfg.JWTSecret, cfg.TokenTTL)
		authHandler.RegisterPublicRoutes(r)
		coreHandler := corehandler.NewHandler(deps.Roster, leaveSvc, recorder, deps.Metrics)
		coreHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
			authHandler.RegisterRoutes(r)

			coreHandler.RegisterRoutes(r)
			reportshandler.NewHandler(reportSvc, deps.Metrics, cfg.DefaultReportRange).RegisterRoutes(r)

			if deps.Audit != nil {
				audithandler.NewHandler(deps.Audit).RegisterRoutes(r)
			}
			var notifier leavehandler.Notifier
			if deps.Notifications != nil {
				notifier = deps.Notifications
				notificationshandler.NewHandler(deps.Notifications, deps.Jobs).RegisterRoutes(r)
			}
			leavehandler.NewHandler(leaveSvc, deps.Idempotency, recorder, notifier, deps.Metrics).RegisterRoutes(r)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
		})
	})

	if info, err := os.Stat(cfg.FrontendDir); cfg.FrontendDir != "" && err == nil && info.IsDir() {
		router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	}

	return router
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}

package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ardacaliskaan/meva-qr-sub000/api/controllers"
	"github.com/ardacaliskaan/meva-qr-sub000/api/middleware"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/feedback"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/menu"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/orders"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/sessions"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/tables"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/config"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/logger"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/metrics"
	pkgredis "github.com/ardacaliskaan/meva-qr-sub000/pkg/redis"
)

// Store is the redis surface the HTTP layer needs: idempotency records, rate
// limit counters and the readiness ping.
type Store interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Ping(ctx context.Context) error
}

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Orders   orders.Service
	Sessions sessions.Service
	Feedback feedback.Service
	Tables   tables.Service
	Menu     menu.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	store Store,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	svc Services,
) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	var redisP controllers.Pinger
	if store != nil {
		redisP = store
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.ClientIP(),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	idempotent := middleware.Idempotency(store, cfg.Idempotency.TTL, logg)
	sessionStartPolicy := middleware.NewRateLimitPolicy(
		"sessions",
		cfg.Sessions.StartRateWindow,
		cfg.Sessions.StartRateLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", controllers.OrdersList(svc.Orders, logg))
		r.With(idempotent).Post("/", controllers.OrderCreate(svc.Orders, logg))
		r.Put("/", controllers.OrderUpdate(svc.Orders, logg))
		r.Delete("/", controllers.OrderDelete(svc.Orders, logg))
		r.Get("/{id}", controllers.OrderDetail(svc.Orders, logg))
	})

	r.Route("/sessions", func(r chi.Router) {
		r.With(middleware.RateLimit(sessionStartPolicy, store, logg)).Post("/", controllers.SessionStart(svc.Sessions, logg))
		r.Get("/", controllers.SessionValidate(svc.Sessions, logg))
		r.Put("/", controllers.SessionUpdate(svc.Sessions, logg))
	})

	r.Route("/feedback", func(r chi.Router) {
		r.With(idempotent).Post("/", controllers.FeedbackSubmit(svc.Feedback, logg))
		r.Get("/", controllers.FeedbackList(svc.Feedback, logg))
		r.Put("/", controllers.FeedbackUpdate(svc.Feedback, logg))
		r.Delete("/", controllers.FeedbackDelete(svc.Feedback, logg))
	})

	r.Route("/tables", func(r chi.Router) {
		r.Get("/", controllers.TablesList(svc.Tables, logg))
		r.Post("/", controllers.TableCreate(svc.Tables, logg))
		r.Put("/", controllers.TableUpdate(svc.Tables, logg))
		r.Delete("/", controllers.TableDelete(svc.Tables, logg))
	})

	r.Route("/menu", func(r chi.Router) {
		r.Get("/", controllers.MenuList(svc.Menu, logg))
		r.Post("/", controllers.MenuCreate(svc.Menu, logg))
		r.Put("/", controllers.MenuUpdate(svc.Menu, logg))
		r.Delete("/", controllers.MenuDelete(svc.Menu, logg))
	})

	return r
}

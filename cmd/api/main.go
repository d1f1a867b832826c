package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ardacaliskaan/meva-qr-sub000/api"
	"github.com/ardacaliskaan/meva-qr-sub000/api/routes"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/feedback"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/menu"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/orders"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/sessions"
	"github.com/ardacaliskaan/meva-qr-sub000/internal/tables"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/config"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/db"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/instance"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/logger"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/metrics"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/migrate"
	"github.com/ardacaliskaan/meva-qr-sub000/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics := metrics.NewDomainMetrics(registry)

	conn := dbClient.DB()
	tableRepo := tables.NewRepository(conn)
	menuRepo := menu.NewRepository(conn)

	sessionService, err := sessions.NewService(sessions.NewRepository(conn), tableRepo, dbClient, cfg.Sessions, sessions.WithMetrics(domainMetrics))
	requireService(logg, "sessions", err)
	orderService, err := orders.NewService(
		orders.NewRepository(conn),
		tableRepo,
		menuRepo,
		sessionService,
		dbClient,
		cfg.Orders,
		orders.WithMetrics(domainMetrics),
		orders.WithRateLimiter(redisClient, cfg.Sessions),
	)
	requireService(logg, "orders", err)
	feedbackService, err := feedback.NewService(feedback.NewRepository(conn), redisClient, cfg.Feedback, domainMetrics)
	requireService(logg, "feedback", err)
	tableService, err := tables.NewService(tableRepo)
	requireService(logg, "tables", err)
	menuService, err := menu.NewService(menuRepo)
	requireService(logg, "menu", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	handler := routes.NewRouter(cfg, logg, dbClient, redisClient, metrics.NewHTTPMetrics(registry), registry, routes.Services{
		Orders:   orderService,
		Sessions: sessionService,
		Feedback: feedbackService,
		Tables:   tableService,
		Menu:     menuService,
	})
	server := api.NewServer(addr, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(ctx, "shutting down api server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(context.Background(), "service", name), "failed to build service", err)
	os.Exit(1)
}

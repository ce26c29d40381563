// Package main is the entry point for the spots directory API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kasuboski/remote-work-directory/internal/config"
	"github.com/kasuboski/remote-work-directory/internal/handler"
	"github.com/kasuboski/remote-work-directory/internal/middleware"
	"github.com/kasuboski/remote-work-directory/internal/repo"
	"github.com/kasuboski/remote-work-directory/internal/service"
	"github.com/kasuboski/remote-work-directory/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// The default logger writes plain text to stderr until ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.AutoMigrate {
		db := stdlib.OpenDBFromPool(pool)
		applied, err := migrations.Up(context.Background(), db)
		db.Close()
		if err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied", "versions", applied)
	}

	readiness := []handler.ReadinessCheck{{Name: "postgres", Check: pool.Ping}}

	// --- Rate limiting ----------------------------------------------------
	// Redis shares counters across replicas; without it each process counts
	// on its own.
	var store middleware.RateLimitStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		store = middleware.NewRedisRateLimitStore(rdb, "spots:ratelimit:")
		readiness = append(readiness, handler.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		slog.Info("rate limiting backed by redis")
	} else {
		mem := middleware.NewInMemoryRateLimitStore()
		store = mem
		go sweep(mem, cfg.SuggestRateWindow)
	}
	limit := middleware.RateLimitConfig{Requests: cfg.SuggestRateLimit, Window: cfg.SuggestRateWindow}

	// --- Metrics ----------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		slog.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	limits := service.DefaultIntakeLimits()
	limits.Total = cfg.IntakeMaxTotal

	spots := service.NewSpotService(repo.NewSpotRepo(pool))
	suggestions := service.NewSuggestionService(repo.NewSuggestionRepo(pool), limits)
	srv := handler.NewServer(spots, suggestions,
		handler.WithLogger(logger),
		handler.WithReadinessChecks(readiness...),
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID, RealIP, Logger, Recoverer.
	// RealIP must precede the rate limiter so it keys on the client address.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))

	srv.Routes(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
		r.Use(middleware.RateLimiter(store, limit, middleware.IPKeyFunc(), logger, metrics))
		srv.SuggestionRoutes(r)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// --- HTTP Server ------------------------------------------------------
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// sweep drops expired rate limit windows for the life of the process.
func sweep(s *middleware.InMemoryRateLimitStore, window time.Duration) {
	t := time.NewTicker(2 * window)
	defer t.Stop()
	for range t.C {
		s.Cleanup()
	}
}

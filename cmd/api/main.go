// Package main is the entry point for the Bike Weather server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
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
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/pressly/goose/v3"
	"github.com/robfig/cron/v3"

	"github.com/mrizzo/bike-weather/internal/catalog"
	"github.com/mrizzo/bike-weather/internal/config"
	"github.com/mrizzo/bike-weather/internal/handler"
	"github.com/mrizzo/bike-weather/internal/mail"
	"github.com/mrizzo/bike-weather/internal/middleware"
	"github.com/mrizzo/bike-weather/internal/openweather"
	"github.com/mrizzo/bike-weather/internal/repo"
	"github.com/mrizzo/bike-weather/internal/service"
	"github.com/mrizzo/bike-weather/migrations"
)

const maxFormBodyBytes = 64 << 10 // form posts are a handful of short fields

func main() {
	// --- Config -----------------------------------------------------------
	// .env is a developer convenience; in deployment the variables come from
	// the environment and the file simply doesn't exist.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
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

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	clock := clockwork.NewRealClock()
	weather := openweather.NewClient(cfg.OpenWeatherAPIKey, 10*time.Second, logger)
	sender := mail.NewResendClient(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailReplyTo, 10*time.Second, logger)
	subscriberRepo := repo.NewSubscriberRepo(pool)

	travel := service.NewTravelService(weather, catalog.Drivable(), catalog.Flyable(),
		cfg.DestinationPace, clock, logger)
	reports := service.NewReportService(weather, weather, travel, sender, subscriberRepo,
		cfg.AppURL, clock, logger)
	subscribers := service.NewSubscriberService(subscriberRepo, weather, reports, logger)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS → body cap.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxFormBodyBytes))

	srv := handler.NewServer(subscribers, reports, cfg.AdminKey, logger)
	r.Mount("/", srv.Router())

	// --- Scheduler --------------------------------------------------------
	// The daily batch runs in-process on a cron schedule unless disabled, in
	// which case cmd/mailer drives it from an external scheduler.
	var scheduler *cron.Cron
	if cfg.SendSchedule != "off" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.SendSchedule, func() {
			result, err := reports.SendDaily(context.Background())
			if err != nil {
				slog.Error("scheduled daily send failed", "error", err)
				return
			}
			slog.Info("scheduled daily send finished", "sent", result.Sent, "failed", result.Failed)
		}); err != nil {
			slog.Error("invalid SEND_SCHEDULE", "schedule", cfg.SendSchedule, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		slog.Info("daily send scheduled", "schedule", cfg.SendSchedule)
	}

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The write timeout is generous because /preview does a serial catalog
	// scan against the forecast provider before responding.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
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

	if scheduler != nil {
		// Stop scheduling new runs; an in-flight batch finishes on its own.
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies any pending embedded migrations. goose needs a
// database/sql handle, so it gets its own short-lived connection rather than
// the pgx pool.
func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	if len(results) > 0 {
		slog.Info("migrations applied", "count", len(results))
	}
	return nil
}

// Package main runs one daily report batch and exits. Use it from an
// external scheduler (cron, systemd timer) when the in-process schedule in
// cmd/api is disabled with SEND_SCHEDULE=off.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/mrizzo/bike-weather/internal/catalog"
	"github.com/mrizzo/bike-weather/internal/config"
	"github.com/mrizzo/bike-weather/internal/mail"
	"github.com/mrizzo/bike-weather/internal/openweather"
	"github.com/mrizzo/bike-weather/internal/repo"
	"github.com/mrizzo/bike-weather/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	weather := openweather.NewClient(cfg.OpenWeatherAPIKey, 10*time.Second, logger)
	sender := mail.NewResendClient(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailReplyTo, 10*time.Second, logger)
	subscriberRepo := repo.NewSubscriberRepo(pool)

	travel := service.NewTravelService(weather, catalog.Drivable(), catalog.Flyable(),
		cfg.DestinationPace, clock, logger)
	reports := service.NewReportService(weather, weather, travel, sender, subscriberRepo,
		cfg.AppURL, clock, logger)

	result, err := reports.SendDaily(context.Background())
	if err != nil {
		slog.Error("daily send failed", "error", err)
		os.Exit(1)
	}

	slog.Info("daily send finished", "sent", result.Sent, "failed", result.Failed)
	if result.Failed > 0 {
		os.Exit(1)
	}
}

// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the Bike Weather service.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// OpenWeatherAPIKey authenticates forecast and geocoding calls. Required.
	OpenWeatherAPIKey string

	// ResendAPIKey authenticates email delivery. Optional: with no key the
	// service runs, but every send fails and is logged.
	ResendAPIKey string

	// EmailFrom is the From header on outgoing reports.
	EmailFrom string

	// EmailReplyTo, when set, adds a Reply-To header on outgoing reports.
	EmailReplyTo string

	// AppURL is the externally reachable base URL used to build the
	// settings and unsubscribe links embedded in emails.
	// Defaults to "http://localhost:8080".
	AppURL string

	// AdminKey gates the /admin endpoints via the ?key= query parameter.
	AdminKey string

	// SendSchedule is a cron expression for the in-process daily mail run.
	// Defaults to "0 6 * * *" (6 AM). Set to "off" to disable and drive the
	// batch with cmd/mailer instead.
	SendSchedule string

	// DestinationPace is the fixed delay between successive candidate-city
	// forecast lookups, protecting the provider quota.
	// Set DESTINATION_PACE_MS to override the 150ms default.
	DestinationPace time.Duration

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnv("EMAIL_FROM", "Bike Weather <reports@localhost>"),
		EmailReplyTo: os.Getenv("EMAIL_REPLY_TO"),
		AppURL:       getEnv("APP_URL", "http://localhost:8080"),
		AdminKey:     getEnv("ADMIN_KEY", "dev-admin-key"),
		SendSchedule: getEnv("SEND_SCHEDULE", "0 6 * * *"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	paceMS, err := strconv.Atoi(getEnv("DESTINATION_PACE_MS", "150"))
	if err != nil || paceMS < 0 {
		return Config{}, fmt.Errorf("DESTINATION_PACE_MS must be a non-negative integer")
	}
	cfg.DestinationPace = time.Duration(paceMS) * time.Millisecond

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		missing = append(missing, "OPENWEATHER_API_KEY")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

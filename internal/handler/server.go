// Package handler implements the HTTP surface of the Bike Weather server.
// All handlers are methods on Server. The public pages are HTML forms built
// from the embedded web templates; the health and admin endpoints speak JSON.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/mrizzo/bike-weather/internal/domain"
	"github.com/mrizzo/bike-weather/internal/service"
)

// SubscriberServicer defines the subscription operations the handlers depend
// on. Defining the interface here (in the consumer package) lets handler
// tests inject a mock without touching the database or service layer.
type SubscriberServicer interface {
	Subscribe(ctx context.Context, in service.SubscribeInput) (domain.Subscriber, error)
	Unsubscribe(ctx context.Context, token string) (domain.Subscriber, error)
	GetBySettingsToken(ctx context.Context, token string) (domain.Subscriber, error)
	UpdateSettings(ctx context.Context, token string, in service.SettingsInput) (domain.Subscriber, error)
	List(ctx context.Context) ([]domain.Subscriber, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// ReportServicer defines the report operations the handlers depend on.
type ReportServicer interface {
	Preview(ctx context.Context, city, state, zip string, prefs domain.Preferences) (string, error)
}

// Server holds the handler dependencies. Methods are in surface-specific
// files (pages.go, admin.go, health.go) but all operate on this struct.
type Server struct {
	subscribers SubscriberServicer
	reports     ReportServicer
	adminKey    string
	logger      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(subscribers SubscriberServicer, reports ReportServicer, adminKey string, logger *slog.Logger) *Server {
	return &Server{
		subscribers: subscribers,
		reports:     reports,
		adminKey:    adminKey,
		logger:      logger,
	}
}

// Router returns the route table. Middleware is composed in main so tests
// exercise the bare routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.Index)
	r.Post("/subscribe", s.Subscribe)
	r.Get("/unsubscribe/{token}", s.Unsubscribe)
	r.Get("/settings/{token}", s.SettingsForm)
	r.Post("/settings/{token}", s.UpdateSettings)
	r.Get("/preview", s.Preview)
	r.Get("/healthz", s.GetHealth)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/subscribers", s.AdminListSubscribers)
		r.Delete("/subscribers/{email}", s.AdminDeleteSubscriber)
	})

	return r
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/mrizzo/bike-weather/internal/domain"
	"github.com/mrizzo/bike-weather/internal/mail"
	"github.com/mrizzo/bike-weather/internal/repo"
)

// Geocoder resolves a city/state (optionally ZIP) to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city, state, zip string) (domain.Place, error)
}

// Sender delivers one HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Ranker produces travel recommendations for a home location.
type Ranker interface {
	Rank(ctx context.Context, home domain.Location, prefs domain.Preferences) (domain.TravelOptions, error)
}

// ReportService builds and delivers bike weather reports: home forecast
// classification plus travel recommendations, rendered and emailed.
type ReportService struct {
	provider ForecastProvider
	geocoder Geocoder
	travel   Ranker
	sender   Sender
	subs     repo.SubscriberRepo
	appURL   string
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewReportService constructs a ReportService. appURL is the external base
// URL for the settings/unsubscribe links embedded in every report.
func NewReportService(provider ForecastProvider, geocoder Geocoder, travel Ranker, sender Sender, subs repo.SubscriberRepo, appURL string, clock clockwork.Clock, logger *slog.Logger) *ReportService {
	return &ReportService{
		provider: provider,
		geocoder: geocoder,
		travel:   travel,
		sender:   sender,
		subs:     subs,
		appURL:   appURL,
		clock:    clock,
		logger:   logger,
	}
}

// BatchResult summarises one daily send run.
type BatchResult struct {
	Sent   int
	Failed int
}

// SendWelcome delivers the signup confirmation report.
func (s *ReportService) SendWelcome(ctx context.Context, sub domain.Subscriber) error {
	goodDays, html, err := s.compose(ctx, sub)
	if err != nil {
		return fmt.Errorf("service.ReportService.SendWelcome: %w", err)
	}

	subject := fmt.Sprintf("Welcome! %d good biking day(s) this week in %s!", goodDays, sub.City)
	if err := s.sender.Send(ctx, sub.Email, subject, html); err != nil {
		return fmt.Errorf("service.ReportService.SendWelcome: %w", err)
	}
	return nil
}

// SendReport delivers one daily report and stamps last_email_sent.
func (s *ReportService) SendReport(ctx context.Context, sub domain.Subscriber) error {
	goodDays, html, err := s.compose(ctx, sub)
	if err != nil {
		return fmt.Errorf("service.ReportService.SendReport: %w", err)
	}

	var subject string
	if goodDays > 0 {
		subject = fmt.Sprintf("%d good biking day(s) this week in %s!", goodDays, sub.City)
	} else {
		subject = fmt.Sprintf("Bike Weather Report for %s - No ideal conditions", sub.City)
	}

	if err := s.sender.Send(ctx, sub.Email, subject, html); err != nil {
		return fmt.Errorf("service.ReportService.SendReport: %w", err)
	}

	if err := s.subs.MarkEmailSent(ctx, sub.ID, s.clock.Now()); err != nil {
		// The report went out; a failed stamp is worth a log line, not a retry
		// of the whole send.
		s.logger.Error("mark email sent failed", "email", sub.Email, "error", err)
	}
	return nil
}

// SendDaily runs the daily batch: one report per verified subscriber.
// A failure for one subscriber is logged and counted, never fatal to the rest.
func (s *ReportService) SendDaily(ctx context.Context) (BatchResult, error) {
	subs, err := s.subs.ListVerified(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("service.ReportService.SendDaily: %w", err)
	}

	s.logger.Info("daily report batch starting", "subscribers", len(subs))

	var result BatchResult
	for _, sub := range subs {
		if err := s.SendReport(ctx, sub); err != nil {
			s.logger.Error("daily report failed", "email", sub.Email, "error", err)
			result.Failed++
			continue
		}
		result.Sent++
	}

	s.logger.Info("daily report batch complete", "sent", result.Sent, "failed", result.Failed)
	return result, nil
}

// Preview renders the report HTML for an arbitrary location and preference
// profile without touching the subscriber table — the backing for the
// /preview endpoint. Returns domain.ErrNotFound when the location cannot be
// geocoded.
func (s *ReportService) Preview(ctx context.Context, city, state, zip string, prefs domain.Preferences) (string, error) {
	place, err := s.geocoder.Geocode(ctx, city, state, zip)
	if err != nil {
		return "", fmt.Errorf("service.ReportService.Preview: %w", err)
	}

	_, html, err := s.composeFor(ctx, place.Location(), place.Name, state, prefs, "#", "#")
	if err != nil {
		return "", fmt.Errorf("service.ReportService.Preview: %w", err)
	}
	return html, nil
}

// compose builds the full report for a subscriber.
func (s *ReportService) compose(ctx context.Context, sub domain.Subscriber) (goodDays int, html string, err error) {
	return s.composeFor(ctx, sub.Location(), sub.City, sub.State, sub.Preferences(),
		s.appURL+"/settings/"+sub.SettingsToken,
		s.appURL+"/unsubscribe/"+sub.UnsubscribeToken)
}

// composeFor classifies the home forecast, ranks travel destinations, and
// renders the report. A home forecast failure degrades to an empty day list
// (the report still goes out, reading "no ideal conditions"); a ranking
// failure is only possible via context cancellation and aborts.
func (s *ReportService) composeFor(ctx context.Context, home domain.Location, city, state string, prefs domain.Preferences, settingsURL, unsubscribeURL string) (int, string, error) {
	samples, err := s.provider.Forecast(ctx, home.Lat, home.Lon)
	if err != nil {
		s.logger.Warn("home forecast unavailable", "city", city, "error", err)
		samples = nil
	}
	days := domain.Classify(samples, prefs)

	travel, err := s.travel.Rank(ctx, home, prefs)
	if err != nil {
		return 0, "", err
	}

	goodDays := 0
	for _, d := range days {
		if d.HasSuitableTime {
			goodDays++
		}
	}

	html, err := mail.RenderReport(mail.ReportData{
		City:              city,
		State:             state,
		Today:             s.clock.Now().Format("Monday, January 2, 2006"),
		MinTempNoPrecip:   prefs.MinTempNoPrecip,
		MinTempWithPrecip: prefs.MinTempWithPrecip,
		RideInSnow:        prefs.RideInSnow,
		Days:              days,
		Travel:            travel,
		SettingsURL:       settingsURL,
		UnsubscribeURL:    unsubscribeURL,
	})
	if err != nil {
		return 0, "", err
	}
	return goodDays, html, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrizzo/bike-weather/internal/domain"
	"github.com/mrizzo/bike-weather/internal/repo"
)

// ReportMailer sends the signup confirmation report. Satisfied by
// *ReportService; an interface so subscriber tests need no mail stack.
type ReportMailer interface {
	SendWelcome(ctx context.Context, sub domain.Subscriber) error
}

// SubscribeInput is a new signup, straight from the form.
type SubscribeInput struct {
	Email   string `validate:"required,email"`
	City    string `validate:"required"`
	State   string `validate:"required"`
	ZipCode string

	MinTempNoPrecip   float64
	MinTempWithPrecip float64
	RideInSnow        bool
}

// SettingsInput is an update to an existing subscription.
type SettingsInput struct {
	City    string `validate:"required"`
	State   string `validate:"required"`
	ZipCode string

	MinTempNoPrecip   float64
	MinTempWithPrecip float64
	RideInSnow        bool
}

// SubscriberService implements the signup, settings, unsubscribe, and admin
// flows around the subscriber table.
type SubscriberService struct {
	subs     repo.SubscriberRepo
	geocoder Geocoder
	reports  ReportMailer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSubscriberService constructs a SubscriberService.
func NewSubscriberService(subs repo.SubscriberRepo, geocoder Geocoder, reports ReportMailer, logger *slog.Logger) *SubscriberService {
	return &SubscriberService{
		subs:     subs,
		geocoder: geocoder,
		reports:  reports,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Subscribe validates the signup, geocodes the home location, persists the
// subscriber with fresh tokens, and sends the welcome report.
// Returns domain.ErrValidation for bad input, domain.ErrNotFound when the
// location cannot be resolved, and domain.ErrDuplicate for a repeat email.
// A failed welcome email does not fail the signup; the daily batch covers it.
func (s *SubscriberService) Subscribe(ctx context.Context, in SubscribeInput) (domain.Subscriber, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.ZipCode = strings.TrimSpace(in.ZipCode)

	if err := s.validate.Struct(in); err != nil {
		return domain.Subscriber{}, fmt.Errorf("%w: %s", domain.ErrValidation, validationMessage(err))
	}

	place, err := s.geocoder.Geocode(ctx, in.City, in.State, in.ZipCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Subscriber{}, fmt.Errorf("service.SubscriberService.Subscribe: %w", err)
		}
		// A geocoder outage is indistinguishable from a bad location as far
		// as the signup flow is concerned: the user should retry.
		s.logger.Warn("geocode failed", "city", in.City, "state", in.State, "error", err)
		return domain.Subscriber{}, fmt.Errorf("service.SubscriberService.Subscribe: %w", domain.ErrNotFound)
	}

	city := place.Name
	if city == "" {
		city = in.City
	}

	sub := domain.Subscriber{
		Email:             in.Email,
		City:              city,
		State:             in.State,
		ZipCode:           in.ZipCode,
		Lat:               place.Lat,
		Lon:               place.Lon,
		Verified:          true,
		VerificationToken: newToken(),
		UnsubscribeToken:  newToken(),
		SettingsToken:     newToken(),
		MinTempNoPrecip:   in.MinTempNoPrecip,
		MinTempWithPrecip: in.MinTempWithPrecip,
		RideInSnow:        in.RideInSnow,
	}

	created, err := s.subs.Create(ctx, sub)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("service.SubscriberService.Subscribe: %w", err)
	}

	if err := s.reports.SendWelcome(ctx, created); err != nil {
		s.logger.Warn("welcome report failed", "email", created.Email, "error", err)
	}

	return created, nil
}

// Unsubscribe removes the subscriber holding the token and returns the
// removed record for the goodbye page.
// Returns domain.ErrNotFound for an unknown token.
func (s *SubscriberService) Unsubscribe(ctx context.Context, token string) (domain.Subscriber, error) {
	sub, err := s.subs.GetByUnsubscribeToken(ctx, token)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("service.SubscriberService.Unsubscribe: %w", err)
	}
	if err := s.subs.DeleteByUnsubscribeToken(ctx, token); err != nil {
		return domain.Subscriber{}, fmt.Errorf("service.SubscriberService.Unsubscribe: %w", err)
	}
	return sub, nil
}

// GetBySettingsToken returns the subscriber for the settings page.
func (s *SubscriberService) GetBySettingsToken(ctx context.Context, token string) (domain.Subscriber, error) {
	sub, err := s.subs.GetBySettingsToken(ctx, token)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("service.SubscriberService.GetBySettingsToken: %w", err)
	}
	return sub, nil
}

// UpdateSettings applies a settings-page submission. The location is
// re-geocoded only when it actually changed, keeping settings saves that only
// touch temperature thresholds offline-safe.
func (s *SubscriberService) UpdateSettings(ctx context.Context, token string, in SettingsInput) (domain.Subscriber, error) {
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.ZipCode = strings.TrimSpace(in.ZipCode)

	if err := s.validate.Struct(in); err != nil {
		return domain.Subscriber{}, fmt.Errorf("%w: %s", domain.ErrValidation, validationMessage(err))
	}

	current, err := s.subs.GetBySettingsToken(ctx, token)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("service.SubscriberService.UpdateSettings: %w", err)
	}

	updated := current
	updated.City = in.City
	updated.State = in.State
	updated.ZipCode = in.ZipCode
	updated.MinTempNoPrecip = in.MinTempNoPrecip
	updated.MinTempWithPrecip = in.MinTempWithPrecip
	updated.RideInSnow = in.RideInSnow

	locationChanged := in.City != current.City || in.State != current.State || in.ZipCode != current.ZipCode
	if locationChanged {
		place, err := s.geocoder.Geocode(ctx, in.City, in.State, in.ZipCode)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("geocode failed", "city", in.City, "state", in.State, "error", err)
			}
			return domain.Subscriber{}, fmt.Errorf("service.SubscriberService.UpdateSettings: %w", domain.ErrNotFound)
		}
		if place.Name != "" {
			updated.City = place.Name
		}
		updated.Lat = place.Lat
		updated.Lon = place.Lon
	}

	result, err := s.subs.UpdateSettings(ctx, token, updated)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("service.SubscriberService.UpdateSettings: %w", err)
	}
	return result, nil
}

// List returns all subscribers for the admin endpoint.
// Always returns a non-nil slice so callers can safely range over it.
func (s *SubscriberService) List(ctx context.Context) ([]domain.Subscriber, error) {
	subs, err := s.subs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.SubscriberService.List: %w", err)
	}
	if subs == nil {
		return []domain.Subscriber{}, nil
	}
	return subs, nil
}

// DeleteByEmail removes a subscriber by email (admin operation).
func (s *SubscriberService) DeleteByEmail(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.subs.DeleteByEmail(ctx, email); err != nil {
		return fmt.Errorf("service.SubscriberService.DeleteByEmail: %w", err)
	}
	return nil
}

// validationMessage extracts a human-readable message from a validator error.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "email":
			return "email address is invalid"
		default:
			return field + " is invalid"
		}
	}
	return err.Error()
}

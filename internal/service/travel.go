// Package service contains the business logic for the Bike Weather service.
// Services validate inputs, run the suitability core, and orchestrate repo,
// provider, and mail calls. No SQL or HTTP plumbing lives here — services
// depend on interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mrizzo/bike-weather/internal/domain"
)

// ForecastProvider fetches the multi-day hourly forecast for a location.
// Implemented by the openweather client in production and by function-field
// mocks in tests.
type ForecastProvider interface {
	Forecast(ctx context.Context, lat, lon float64) ([]domain.Sample, error)
}

// maxPerTier caps how many destinations each tier recommends.
const maxPerTier = 3

// TravelService ranks the fixed destination catalog against a rider's
// preferences: which nearby cities have ridable weather when home does not.
type TravelService struct {
	provider ForecastProvider
	drive    []domain.Candidate
	fly      []domain.Candidate
	pace     time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewTravelService constructs a TravelService over the given candidate tiers.
// pace is the fixed delay inserted between successive provider lookups — the
// catalog is evaluated serially and each entry costs one API call, so pacing
// lives here, next to the loop that owns the quota pressure. Pass a fake
// clock (or zero pace) in tests.
func NewTravelService(provider ForecastProvider, drive, fly []domain.Candidate, pace time.Duration, clock clockwork.Clock, logger *slog.Logger) *TravelService {
	return &TravelService{
		provider: provider,
		drive:    drive,
		fly:      fly,
		pace:     pace,
		clock:    clock,
		logger:   logger,
	}
}

// Rank evaluates every catalog candidate with the rider's own preference
// profile and returns, per tier, the closest qualifying destinations —
// at most three, ascending by distance. A candidate qualifies when at least
// one forecast day has a suitable riding window. A provider failure for one
// candidate drops that candidate and nothing else. The only error Rank itself
// returns is context cancellation.
func (s *TravelService) Rank(ctx context.Context, home domain.Location, prefs domain.Preferences) (domain.TravelOptions, error) {
	drive, err := s.rankTier(ctx, home, prefs, s.drive)
	if err != nil {
		return domain.TravelOptions{}, fmt.Errorf("service.TravelService.Rank: %w", err)
	}
	fly, err := s.rankTier(ctx, home, prefs, s.fly)
	if err != nil {
		return domain.TravelOptions{}, fmt.Errorf("service.TravelService.Rank: %w", err)
	}
	return domain.TravelOptions{Drive: drive, Fly: fly}, nil
}

func (s *TravelService) rankTier(ctx context.Context, home domain.Location, prefs domain.Preferences, candidates []domain.Candidate) ([]domain.Destination, error) {
	var qualified []domain.Destination
	for _, c := range candidates {
		if dest, ok := s.evaluate(ctx, home, prefs, c); ok {
			qualified = append(qualified, dest)
		}
		// Fixed pacing between provider calls. Without it the provider
		// throttles the tail of the catalog and those cities silently
		// degrade to "no data".
		if err := s.pause(ctx); err != nil {
			return nil, err
		}
	}

	sort.Slice(qualified, func(i, j int) bool {
		return qualified[i].DistanceMiles < qualified[j].DistanceMiles
	})
	if len(qualified) > maxPerTier {
		qualified = qualified[:maxPerTier]
	}
	return qualified, nil
}

// evaluate classifies one candidate's forecast. ok is false when the provider
// failed, returned nothing, or no day has a suitable window.
func (s *TravelService) evaluate(ctx context.Context, home domain.Location, prefs domain.Preferences, c domain.Candidate) (domain.Destination, bool) {
	samples, err := s.provider.Forecast(ctx, c.Lat, c.Lon)
	if err != nil {
		s.logger.Warn("destination forecast unavailable", "city", c.City, "state", c.State, "error", err)
		return domain.Destination{}, false
	}

	days := domain.Classify(samples, prefs)

	suitableDays := 0
	bestTemp := math.Inf(-1)
	for _, day := range days {
		if !day.HasSuitableTime {
			continue
		}
		suitableDays++
		// The reported best temp comes from suitable days only; an
		// unsuitable day's warm-but-snowy afternoon doesn't count.
		if b := day.BestFeelsLike(); b > bestTemp {
			bestTemp = b
		}
	}
	if suitableDays == 0 {
		return domain.Destination{}, false
	}

	dist := domain.Distance(home, c.Location())
	return domain.Destination{
		City:          c.City,
		State:         c.State,
		Airport:       c.Airport,
		DistanceMiles: int(math.Round(dist)),
		DriveTime:     domain.FormatDriveTime(dist),
		SuitableDays:  suitableDays,
		BestTemp:      bestTemp,
	}, true
}

// pause waits out the pacing delay, or returns early when ctx is cancelled.
func (s *TravelService) pause(ctx context.Context) error {
	if s.pace <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(s.pace):
		return nil
	}
}

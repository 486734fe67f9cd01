package service_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrizzo/bike-weather/internal/domain"
	"github.com/mrizzo/bike-weather/internal/service"
)

// mockProvider is a hand-written test double for service.ForecastProvider.
type mockProvider struct {
	forecast func(ctx context.Context, lat, lon float64) ([]domain.Sample, error)
}

func (m *mockProvider) Forecast(ctx context.Context, lat, lon float64) ([]domain.Sample, error) {
	return m.forecast(ctx, lat, lon)
}

// compile-time check: mockProvider must satisfy service.ForecastProvider.
var _ service.ForecastProvider = (*mockProvider)(nil)

// ---- helpers ---------------------------------------------------------------

var home = domain.Location{Lat: 40.95, Lon: -73.81}

// rideableWeek returns five days of clearly suitable midday samples.
func rideableWeek() []domain.Sample {
	base := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	var samples []domain.Sample
	for d := 0; d < 5; d++ {
		samples = append(samples, domain.Sample{
			At:        base.AddDate(0, 0, d),
			FeelsLike: 60,
			Condition: "Clear",
		})
	}
	return samples
}

// frozenWeek returns samples that are always below any sane threshold.
func frozenWeek() []domain.Sample {
	base := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	var samples []domain.Sample
	for d := 0; d < 5; d++ {
		samples = append(samples, domain.Sample{
			At:        base.AddDate(0, 0, d),
			FeelsLike: 5,
			Condition: "Clear",
		})
	}
	return samples
}

func candidates(n int) []domain.Candidate {
	// Spread candidates northward so each is a bit farther from home.
	out := make([]domain.Candidate, n)
	for i := range out {
		out[i] = domain.Candidate{
			City:  string(rune('A' + i)),
			State: "NY",
			Lat:   home.Lat + float64(i+1),
			Lon:   home.Lon,
		}
	}
	return out
}

func newTravel(p service.ForecastProvider, drive, fly []domain.Candidate) *service.TravelService {
	return service.NewTravelService(p, drive, fly, 0, clockwork.NewRealClock(), slog.New(slog.DiscardHandler))
}

// ---- Rank tests ------------------------------------------------------------

func TestTravelService_Rank_TruncatesToThreeClosest(t *testing.T) {
	provider := &mockProvider{
		forecast: func(_ context.Context, _, _ float64) ([]domain.Sample, error) {
			return rideableWeek(), nil
		},
	}
	svc := newTravel(provider, candidates(6), nil)

	got, err := svc.Rank(context.Background(), home, domain.DefaultPreferences())

	require.NoError(t, err)
	require.Len(t, got.Drive, 3)
	assert.Empty(t, got.Fly)
	for i := 1; i < len(got.Drive); i++ {
		assert.LessOrEqual(t, got.Drive[i-1].DistanceMiles, got.Drive[i].DistanceMiles,
			"results must be non-decreasing in distance")
	}
	// Closest first: candidate "A" is 1 degree of latitude away, ~69 miles.
	assert.Equal(t, "A", got.Drive[0].City)
	assert.InDelta(t, 69, got.Drive[0].DistanceMiles, 1)
}

func TestTravelService_Rank_ExcludesUnsuitableCandidates(t *testing.T) {
	cands := candidates(3)
	provider := &mockProvider{
		forecast: func(_ context.Context, lat, _ float64) ([]domain.Sample, error) {
			if lat == cands[1].Lat {
				return frozenWeek(), nil // middle candidate never rideable
			}
			return rideableWeek(), nil
		},
	}
	svc := newTravel(provider, cands, nil)

	got, err := svc.Rank(context.Background(), home, domain.DefaultPreferences())

	require.NoError(t, err)
	require.Len(t, got.Drive, 2)
	for _, d := range got.Drive {
		assert.NotEqual(t, cands[1].City, d.City)
		assert.Positive(t, d.SuitableDays, "a ranked destination always has suitable days")
	}
}

func TestTravelService_Rank_ProviderFailureDropsOnlyThatCandidate(t *testing.T) {
	cands := candidates(3)
	provider := &mockProvider{
		forecast: func(_ context.Context, lat, _ float64) ([]domain.Sample, error) {
			if lat == cands[0].Lat {
				return nil, errors.New("upstream 500")
			}
			return rideableWeek(), nil
		},
	}
	svc := newTravel(provider, cands, nil)

	got, err := svc.Rank(context.Background(), home, domain.DefaultPreferences())

	require.NoError(t, err, "a single candidate failure must not abort the ranking")
	assert.Len(t, got.Drive, 2)
}

func TestTravelService_Rank_EmptyForecastExcludes(t *testing.T) {
	provider := &mockProvider{
		forecast: func(_ context.Context, _, _ float64) ([]domain.Sample, error) {
			return nil, nil
		},
	}
	svc := newTravel(provider, candidates(2), nil)

	got, err := svc.Rank(context.Background(), home, domain.DefaultPreferences())

	require.NoError(t, err)
	assert.Empty(t, got.Drive)
}

func TestTravelService_Rank_RanksBothTiers(t *testing.T) {
	fly := []domain.Candidate{{City: "Miami", State: "FL", Airport: "MIA", Lat: 25.76, Lon: -80.19}}
	provider := &mockProvider{
		forecast: func(_ context.Context, _, _ float64) ([]domain.Sample, error) {
			return rideableWeek(), nil
		},
	}
	svc := newTravel(provider, candidates(1), fly)

	got, err := svc.Rank(context.Background(), home, domain.DefaultPreferences())

	require.NoError(t, err)
	require.Len(t, got.Fly, 1)
	assert.Equal(t, "MIA", got.Fly[0].Airport)
	assert.Equal(t, 5, got.Fly[0].SuitableDays)
	assert.Equal(t, 60.0, got.Fly[0].BestTemp)
	assert.NotEmpty(t, got.Fly[0].DriveTime)
}

func TestTravelService_Rank_BestTempFromSuitableDaysOnly(t *testing.T) {
	base := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	samples := []domain.Sample{
		// Day 1: suitable, best 50.
		{At: base, FeelsLike: 50, Condition: "Clear"},
		// Day 2: warmer but snowed out — must not contribute its 55.
		{At: base.AddDate(0, 0, 1), FeelsLike: 55, Condition: "Snow"},
	}
	provider := &mockProvider{
		forecast: func(_ context.Context, _, _ float64) ([]domain.Sample, error) {
			return samples, nil
		},
	}
	svc := newTravel(provider, candidates(1), nil)

	got, err := svc.Rank(context.Background(), home, domain.DefaultPreferences())

	require.NoError(t, err)
	require.Len(t, got.Drive, 1)
	assert.Equal(t, 1, got.Drive[0].SuitableDays)
	assert.Equal(t, 50.0, got.Drive[0].BestTemp)
}

func TestTravelService_Rank_UsesRiderPreferences(t *testing.T) {
	base := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	snowy := []domain.Sample{{At: base, FeelsLike: 50, Condition: "Snow"}}
	provider := &mockProvider{
		forecast: func(_ context.Context, _, _ float64) ([]domain.Sample, error) {
			return snowy, nil
		},
	}
	svc := newTravel(provider, candidates(1), nil)

	prefs := domain.DefaultPreferences()
	got, err := svc.Rank(context.Background(), home, prefs)
	require.NoError(t, err)
	assert.Empty(t, got.Drive, "snow-averse rider gets no snowy destination")

	prefs.RideInSnow = true
	got, err = svc.Rank(context.Background(), home, prefs)
	require.NoError(t, err)
	assert.Len(t, got.Drive, 1, "snow-tolerant rider gets the same destination")
}

func TestTravelService_Rank_ContextCancellation(t *testing.T) {
	provider := &mockProvider{
		forecast: func(_ context.Context, _, _ float64) ([]domain.Sample, error) {
			return rideableWeek(), nil
		},
	}
	// Non-zero pace so the pause between lookups observes cancellation.
	svc := service.NewTravelService(provider, candidates(2), nil, time.Second,
		clockwork.NewRealClock(), slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Rank(ctx, home, domain.DefaultPreferences())

	assert.ErrorIs(t, err, context.Canceled)
}

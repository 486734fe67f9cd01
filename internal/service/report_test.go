package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrizzo/bike-weather/internal/domain"
	"github.com/mrizzo/bike-weather/internal/service"
)

// mockSender is a hand-written test double for service.Sender that records
// every delivery.
type mockSender struct {
	send func(ctx context.Context, to, subject, html string) error
}

func (m *mockSender) Send(ctx context.Context, to, subject, html string) error {
	return m.send(ctx, to, subject, html)
}

var _ service.Sender = (*mockSender)(nil)

// mockRanker is a hand-written test double for service.Ranker.
type mockRanker struct {
	rank func(ctx context.Context, home domain.Location, prefs domain.Preferences) (domain.TravelOptions, error)
}

func (m *mockRanker) Rank(ctx context.Context, home domain.Location, prefs domain.Preferences) (domain.TravelOptions, error) {
	return m.rank(ctx, home, prefs)
}

var _ service.Ranker = (*mockRanker)(nil)

type sentMail struct {
	to      string
	subject string
	html    string
}

// ---- fixtures ---------------------------------------------------------------

var reportNow = time.Date(2026, 3, 7, 6, 0, 0, 0, time.UTC) // Saturday

func recordingSender(sent *[]sentMail) *mockSender {
	return &mockSender{
		send: func(_ context.Context, to, subject, html string) error {
			*sent = append(*sent, sentMail{to: to, subject: subject, html: html})
			return nil
		},
	}
}

func emptyRanker() *mockRanker {
	return &mockRanker{
		rank: func(_ context.Context, _ domain.Location, _ domain.Preferences) (domain.TravelOptions, error) {
			return domain.TravelOptions{}, nil
		},
	}
}

func fixedProvider(samples []domain.Sample) *mockProvider {
	return &mockProvider{
		forecast: func(_ context.Context, _, _ float64) ([]domain.Sample, error) {
			return samples, nil
		},
	}
}

func newReportService(provider service.ForecastProvider, geocoder service.Geocoder, ranker service.Ranker, sender service.Sender, repo *mockSubscriberRepo) *service.ReportService {
	return service.NewReportService(provider, geocoder, ranker, sender, repo,
		"https://bike.example.com", clockwork.NewFakeClockAt(reportNow), discardLogger())
}

// ---- SendReport -------------------------------------------------------------

func TestReportService_SendReport_GoodDaysSubject(t *testing.T) {
	sub := subscriberFixture()
	var sent []sentMail
	var stampedID uuid.UUID
	var stampedAt time.Time
	repo := &mockSubscriberRepo{
		markEmailSent: func(_ context.Context, id uuid.UUID, at time.Time) error {
			stampedID = id
			stampedAt = at
			return nil
		},
	}
	svc := newReportService(fixedProvider(rideableWeek()), okGeocoder(), emptyRanker(), recordingSender(&sent), repo)

	err := svc.SendReport(context.Background(), sub)

	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, sub.Email, sent[0].to)
	assert.Equal(t, "5 good biking day(s) this week in New Rochelle!", sent[0].subject)
	assert.Contains(t, sent[0].html, "https://bike.example.com/settings/"+sub.SettingsToken)
	assert.Contains(t, sent[0].html, "https://bike.example.com/unsubscribe/"+sub.UnsubscribeToken)
	assert.Equal(t, sub.ID, stampedID)
	assert.Equal(t, reportNow, stampedAt)
}

func TestReportService_SendReport_NoGoodDaysSubject(t *testing.T) {
	sub := subscriberFixture()
	var sent []sentMail
	repo := &mockSubscriberRepo{
		markEmailSent: func(_ context.Context, _ uuid.UUID, _ time.Time) error { return nil },
	}
	svc := newReportService(fixedProvider(frozenWeek()), okGeocoder(), emptyRanker(), recordingSender(&sent), repo)

	err := svc.SendReport(context.Background(), sub)

	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "Bike Weather Report for New Rochelle - No ideal conditions", sent[0].subject)
}

func TestReportService_SendReport_HomeForecastFailureStillSends(t *testing.T) {
	sub := subscriberFixture()
	provider := &mockProvider{
		forecast: func(_ context.Context, _, _ float64) ([]domain.Sample, error) {
			return nil, errors.New("upstream 503")
		},
	}
	var sent []sentMail
	repo := &mockSubscriberRepo{
		markEmailSent: func(_ context.Context, _ uuid.UUID, _ time.Time) error { return nil },
	}
	svc := newReportService(provider, okGeocoder(), emptyRanker(), recordingSender(&sent), repo)

	err := svc.SendReport(context.Background(), sub)

	require.NoError(t, err, "a home forecast outage degrades, it does not abort")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].subject, "No ideal conditions")
}

func TestReportService_SendReport_SenderFailure(t *testing.T) {
	sub := subscriberFixture()
	sender := &mockSender{
		send: func(_ context.Context, _, _, _ string) error { return errors.New("resend 500") },
	}
	repo := &mockSubscriberRepo{
		markEmailSent: func(_ context.Context, _ uuid.UUID, _ time.Time) error {
			t.Fatal("last_email_sent must not be stamped when delivery failed")
			return nil
		},
	}
	svc := newReportService(fixedProvider(rideableWeek()), okGeocoder(), emptyRanker(), sender, repo)

	err := svc.SendReport(context.Background(), sub)

	assert.Error(t, err)
}

func TestReportService_SendReport_StampFailureIsNotFatal(t *testing.T) {
	sub := subscriberFixture()
	var sent []sentMail
	repo := &mockSubscriberRepo{
		markEmailSent: func(_ context.Context, _ uuid.UUID, _ time.Time) error {
			return errors.New("connection reset")
		},
	}
	svc := newReportService(fixedProvider(rideableWeek()), okGeocoder(), emptyRanker(), recordingSender(&sent), repo)

	err := svc.SendReport(context.Background(), sub)

	require.NoError(t, err)
	assert.Len(t, sent, 1)
}

func TestReportService_SendReport_UsesSubscriberPreferences(t *testing.T) {
	sub := subscriberFixture()
	sub.RideInSnow = true

	var ranked domain.Preferences
	ranker := &mockRanker{
		rank: func(_ context.Context, _ domain.Location, prefs domain.Preferences) (domain.TravelOptions, error) {
			ranked = prefs
			return domain.TravelOptions{}, nil
		},
	}
	repo := &mockSubscriberRepo{
		markEmailSent: func(_ context.Context, _ uuid.UUID, _ time.Time) error { return nil },
	}
	var sent []sentMail
	svc := newReportService(fixedProvider(rideableWeek()), okGeocoder(), ranker, recordingSender(&sent), repo)

	err := svc.SendReport(context.Background(), sub)

	require.NoError(t, err)
	assert.True(t, ranked.RideInSnow, "the ranker sees the rider's own preferences")
	assert.Equal(t, sub.MinTempNoPrecip, ranked.MinTempNoPrecip)
}

// ---- SendWelcome ------------------------------------------------------------

func TestReportService_SendWelcome_Subject(t *testing.T) {
	sub := subscriberFixture()
	var sent []sentMail
	svc := newReportService(fixedProvider(rideableWeek()), okGeocoder(), emptyRanker(), recordingSender(&sent), &mockSubscriberRepo{})

	err := svc.SendWelcome(context.Background(), sub)

	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "Welcome! 5 good biking day(s) this week in New Rochelle!", sent[0].subject)
}

// ---- SendDaily --------------------------------------------------------------

func TestReportService_SendDaily_CountsSentAndFailed(t *testing.T) {
	one := subscriberFixture()
	two := subscriberFixture()
	two.ID = uuid.New()
	two.Email = "other@example.com"

	sender := &mockSender{
		send: func(_ context.Context, to, _, _ string) error {
			if to == two.Email {
				return errors.New("mailbox full")
			}
			return nil
		},
	}
	repo := &mockSubscriberRepo{
		listVerified: func(_ context.Context) ([]domain.Subscriber, error) {
			return []domain.Subscriber{one, two}, nil
		},
		markEmailSent: func(_ context.Context, _ uuid.UUID, _ time.Time) error { return nil },
	}
	svc := newReportService(fixedProvider(rideableWeek()), okGeocoder(), emptyRanker(), sender, repo)

	got, err := svc.SendDaily(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, got.Sent)
	assert.Equal(t, 1, got.Failed)
}

func TestReportService_SendDaily_ListFailure(t *testing.T) {
	repo := &mockSubscriberRepo{
		listVerified: func(_ context.Context) ([]domain.Subscriber, error) {
			return nil, errors.New("connection refused")
		},
	}
	var sent []sentMail
	svc := newReportService(fixedProvider(nil), okGeocoder(), emptyRanker(), recordingSender(&sent), repo)

	_, err := svc.SendDaily(context.Background())

	assert.Error(t, err)
	assert.Empty(t, sent)
}

// ---- Preview ----------------------------------------------------------------

func TestReportService_Preview(t *testing.T) {
	svc := newReportService(fixedProvider(rideableWeek()), okGeocoder(), emptyRanker(), &mockSender{}, &mockSubscriberRepo{})

	html, err := svc.Preview(context.Background(), "New Rochelle", "NY", "", domain.DefaultPreferences())

	require.NoError(t, err)
	assert.Contains(t, html, "New Rochelle")
	assert.Contains(t, html, "Saturday, March 7, 2026")
}

func TestReportService_Preview_UnknownLocation(t *testing.T) {
	geocoder := &mockGeocoder{
		geocode: func(_ context.Context, _, _, _ string) (domain.Place, error) {
			return domain.Place{}, domain.ErrNotFound
		},
	}
	svc := newReportService(fixedProvider(nil), geocoder, emptyRanker(), &mockSender{}, &mockSubscriberRepo{})

	_, err := svc.Preview(context.Background(), "Atlantis", "XX", "", domain.DefaultPreferences())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

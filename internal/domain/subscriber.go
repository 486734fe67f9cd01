package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is one signed-up rider: their email, home location, and riding
// preferences. The three tokens gate the email-link flows (verification,
// one-click unsubscribe, settings page) without requiring accounts.
type Subscriber struct {
	ID      uuid.UUID
	Email   string
	City    string
	State   string
	ZipCode string
	Lat     float64
	Lon     float64

	Verified          bool
	VerificationToken string
	UnsubscribeToken  string
	SettingsToken     string

	MinTempNoPrecip   float64
	MinTempWithPrecip float64
	RideInSnow        bool

	CreatedAt     time.Time
	LastEmailSent *time.Time // nil until the first report is delivered
}

// Location returns the subscriber's home coordinates.
func (s Subscriber) Location() Location {
	return Location{Lat: s.Lat, Lon: s.Lon}
}

// Preferences assembles the rider's stored thresholds into a full preference
// profile. The riding window is not per-subscriber; it comes from the
// application defaults.
func (s Subscriber) Preferences() Preferences {
	return Preferences{
		MinTempNoPrecip:   s.MinTempNoPrecip,
		MinTempWithPrecip: s.MinTempWithPrecip,
		RideInSnow:        s.RideInSnow,
		RideStartHour:     DefaultRideStartHour,
		RideEndHour:       DefaultRideEndHour,
	}
}

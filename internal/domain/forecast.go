// Package domain contains the core data types and the biking-suitability
// classifier for the Bike Weather application. This package has zero
// infrastructure dependencies and is imported by every other internal package
// (repo, service, handler, openweather, mail).
package domain

import (
	"strings"
	"time"
)

// Precipitation is the category derived from a forecast sample's condition text.
type Precipitation string

const (
	PrecipNone Precipitation = ""
	PrecipRain Precipitation = "rain"
	PrecipSnow Precipitation = "snow"
)

// Sample is one hourly forecast entry for a location, as reported by the
// weather provider. At carries the location-local time zone so calendar-day
// grouping happens at local midnight, not server midnight. Samples are
// immutable once built.
type Sample struct {
	At          time.Time
	FeelsLike   float64 // apparent temperature, °F
	Condition   string  // provider's categorical condition, e.g. "Rain", "Clear"
	Description string  // provider's free-text description, e.g. "light rain"
}

// ClassifyPrecipitation maps a condition string onto a precipitation category.
// Rain markers (rain, drizzle) are checked first; a snow marker is checked
// after and overrides rain. An empty or unrecognised condition means no
// precipitation — the conservative default for missing provider data.
func ClassifyPrecipitation(condition string) Precipitation {
	c := strings.ToLower(condition)
	precip := PrecipNone
	if strings.Contains(c, "rain") || strings.Contains(c, "drizzle") {
		precip = PrecipRain
	}
	if strings.Contains(c, "snow") {
		precip = PrecipSnow
	}
	return precip
}

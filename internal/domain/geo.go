package domain

import (
	"fmt"
	"math"
)

// earthRadiusMiles is the Earth radius used for great-circle distances.
const earthRadiusMiles = 3959

// averageDriveMPH is the assumed highway average, stops included, behind
// FormatDriveTime's estimate.
const averageDriveMPH = 50

// Location is an immutable latitude/longitude pair in decimal degrees.
type Location struct {
	Lat float64
	Lon float64
}

// Place is a geocoder result: resolved coordinates plus the provider's
// canonical name for the location.
type Place struct {
	Lat  float64
	Lon  float64
	Name string
}

// Location returns the place's coordinates.
func (p Place) Location() Location {
	return Location{Lat: p.Lat, Lon: p.Lon}
}

// Distance returns the great-circle distance between two points in miles,
// computed with the haversine formula.
func Distance(a, b Location) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMiles * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// FormatDriveTime estimates drive time for a distance at 50 mph and renders
// it as "H hr M min", omitting whichever component is zero:
// 100 miles → "2 hr", 75 miles → "1 hr 30 min", 25 miles → "30 min".
func FormatDriveTime(miles float64) string {
	hours := miles / averageDriveMPH
	h := int(hours)
	m := int((hours - float64(h)) * 60)
	switch {
	case h == 0:
		return fmt.Sprintf("%d min", m)
	case m == 0:
		return fmt.Sprintf("%d hr", h)
	default:
		return fmt.Sprintf("%d hr %d min", h, m)
	}
}

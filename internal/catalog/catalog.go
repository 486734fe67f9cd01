// Package catalog holds the fixed travel-destination reference data: the
// cities the ranker evaluates when the weather at home is no good. The lists
// are process-wide immutable tables — accessors hand out copies so no caller
// can mutate the catalog.
package catalog

import "github.com/mrizzo/bike-weather/internal/domain"

// drivable covers destinations within roughly a six-hour drive of the
// Northeast corridor; no airport required.
var drivable = []domain.Candidate{
	{City: "Baltimore", State: "MD", Lat: 39.2904, Lon: -76.6122},
	{City: "Annapolis", State: "MD", Lat: 38.9784, Lon: -76.4922},
	{City: "Rehoboth Beach", State: "DE", Lat: 38.7210, Lon: -75.0760},
	{City: "Cape May", State: "NJ", Lat: 38.9351, Lon: -74.9060},
	{City: "Atlantic City", State: "NJ", Lat: 39.3643, Lon: -74.4229},
	{City: "Lancaster", State: "PA", Lat: 40.0379, Lon: -76.3055},
	{City: "Gettysburg", State: "PA", Lat: 39.8309, Lon: -77.2311},
	{City: "Harrisburg", State: "PA", Lat: 40.2732, Lon: -76.8867},
	{City: "Wilmington", State: "DE", Lat: 39.7391, Lon: -75.5398},
	{City: "Norfolk", State: "VA", Lat: 36.8508, Lon: -76.2859},
	{City: "Virginia Beach", State: "VA", Lat: 36.8529, Lon: -75.9780},
	{City: "Charlottesville", State: "VA", Lat: 38.0293, Lon: -78.4767},
	{City: "Asheville", State: "NC", Lat: 35.5951, Lon: -82.5515},
	{City: "Outer Banks", State: "NC", Lat: 35.9582, Lon: -75.6201},
	{City: "Myrtle Beach", State: "SC", Lat: 33.6891, Lon: -78.8867},
	{City: "Charleston", State: "SC", Lat: 32.7765, Lon: -79.9311},
	{City: "Savannah", State: "GA", Lat: 32.0809, Lon: -81.0912},
	{City: "Providence", State: "RI", Lat: 41.8240, Lon: -71.4128},
	{City: "Portland", State: "ME", Lat: 43.6591, Lon: -70.2568},
	{City: "Burlington", State: "VT", Lat: 44.4759, Lon: -73.2121},
}

// flyable covers destinations served by a major airport.
var flyable = []domain.Candidate{
	{City: "Philadelphia", State: "PA", Airport: "PHL", Lat: 39.9526, Lon: -75.1652},
	{City: "Washington", State: "DC", Airport: "DCA", Lat: 38.9072, Lon: -77.0369},
	{City: "Boston", State: "MA", Airport: "BOS", Lat: 42.3601, Lon: -71.0589},
	{City: "Charlotte", State: "NC", Airport: "CLT", Lat: 35.2271, Lon: -80.8431},
	{City: "Atlanta", State: "GA", Airport: "ATL", Lat: 33.7490, Lon: -84.3880},
	{City: "Miami", State: "FL", Airport: "MIA", Lat: 25.7617, Lon: -80.1918},
	{City: "Tampa", State: "FL", Airport: "TPA", Lat: 27.9506, Lon: -82.4572},
	{City: "Orlando", State: "FL", Airport: "MCO", Lat: 28.5383, Lon: -81.3792},
	{City: "Raleigh", State: "NC", Airport: "RDU", Lat: 35.7796, Lon: -78.6382},
	{City: "Richmond", State: "VA", Airport: "RIC", Lat: 37.5407, Lon: -77.4360},
}

// Drivable returns a copy of the drivable-tier candidates.
func Drivable() []domain.Candidate {
	out := make([]domain.Candidate, len(drivable))
	copy(out, drivable)
	return out
}

// Flyable returns a copy of the flyable-tier candidates.
func Flyable() []domain.Candidate {
	out := make([]domain.Candidate, len(flyable))
	copy(out, flyable)
	return out
}

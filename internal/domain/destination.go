package domain

// Candidate is one entry in the fixed travel-destination catalog: a city
// worth riding in, with coordinates and an optional major-airport code.
// Candidates are static reference data, never derived from subscriber input.
type Candidate struct {
	City    string
	State   string
	Airport string // IATA code; empty for drive-only destinations
	Lat     float64
	Lon     float64
}

// Location returns the candidate's coordinates.
func (c Candidate) Location() Location {
	return Location{Lat: c.Lat, Lon: c.Lon}
}

// Destination is a ranked travel recommendation: a catalog candidate that has
// at least one suitable riding day over the forecast horizon, annotated with
// its distance from the subscriber's home.
type Destination struct {
	City          string
	State         string
	Airport       string
	DistanceMiles int    // great-circle distance, rounded to the nearest mile
	DriveTime     string // e.g. "2 hr 15 min"
	SuitableDays  int    // days in the horizon with at least one suitable window
	BestTemp      float64
}

// TravelOptions holds the ranked destinations per tier, each list at most
// three entries long, ascending by distance.
type TravelOptions struct {
	Drive []Destination
	Fly   []Destination
}

// Empty reports whether no destination qualified in either tier.
func (t TravelOptions) Empty() bool {
	return len(t.Drive) == 0 && len(t.Fly) == 0
}

package domain

// Default rider thresholds, in °F. A dry 33° morning is rideable with the
// right gloves; rain demands another dozen degrees.
const (
	DefaultMinTempNoPrecip   = 33
	DefaultMinTempWithPrecip = 45
)

// Default riding window: hours outside [6, 19) are never evaluated.
const (
	DefaultRideStartHour = 6
	DefaultRideEndHour   = 19
)

// Preferences captures one rider's tolerance for cold, rain, and snow,
// plus the daily hour window they are willing to ride in.
type Preferences struct {
	// MinTempNoPrecip is the minimum feels-like temperature (°F) for a dry hour.
	MinTempNoPrecip float64

	// MinTempWithPrecip is the minimum feels-like temperature (°F) when rain
	// or snow is forecast. Sane configurations keep it >= MinTempNoPrecip,
	// but that is not enforced.
	MinTempWithPrecip float64

	// RideInSnow allows snow hours to qualify. When false, snow is a
	// categorical veto regardless of temperature.
	RideInSnow bool

	// RideStartHour and RideEndHour bound the daily evaluation window
	// [RideStartHour, RideEndHour) in location-local hours. Hours outside
	// the window are excluded from evaluation entirely, not marked unsuitable.
	RideStartHour int
	RideEndHour   int
}

// DefaultPreferences returns the preferences applied when a subscriber has
// not customised anything.
func DefaultPreferences() Preferences {
	return Preferences{
		MinTempNoPrecip:   DefaultMinTempNoPrecip,
		MinTempWithPrecip: DefaultMinTempWithPrecip,
		RideInSnow:        false,
		RideStartHour:     DefaultRideStartHour,
		RideEndHour:       DefaultRideEndHour,
	}
}

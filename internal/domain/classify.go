package domain

import "time"

// Window is one in-window forecast sample annotated with its suitability
// verdict under a given set of preferences.
type Window struct {
	At        time.Time
	FeelsLike float64
	Precip    Precipitation
	Weather   string // free-text description for display
	Suitable  bool
}

// Day is the aggregate suitability verdict for one calendar date at the
// forecast location. It is a pure computation result: built fresh on every
// Classify call, never persisted, never mutated afterwards. A Day always
// holds at least one Window — dates with no in-window samples are omitted
// from Classify output entirely.
type Day struct {
	Date            string // calendar date in location-local time, YYYY-MM-DD
	DayName         string // weekday label, e.g. "Saturday"
	Windows         []Window
	SuitableCount   int
	HasSuitableTime bool
}

// BestWindow returns the window with the highest feels-like temperature,
// suitable or not. Safe to call on any Day produced by Classify, which never
// emits a Day with zero windows.
func (d Day) BestWindow() Window {
	best := d.Windows[0]
	for _, w := range d.Windows[1:] {
		if w.FeelsLike > best.FeelsLike {
			best = w
		}
	}
	return best
}

// BestFeelsLike returns the highest feels-like temperature across the day's
// windows, suitable or not.
func (d Day) BestFeelsLike() float64 {
	return d.BestWindow().FeelsLike
}

// Classify turns an hourly forecast into per-day suitability verdicts under
// the given preferences.
//
// Samples whose local hour falls outside [RideStartHour, RideEndHour) are
// excluded entirely: they appear in no window list and count toward no tally.
// Each retained sample is suitable iff its feels-like temperature meets the
// effective threshold (MinTempWithPrecip when rain or snow is forecast,
// MinTempNoPrecip otherwise) and snow is either absent or explicitly allowed.
// Raising the temperature threshold never overrides the snow veto.
//
// Days appear in first-seen date order, which is chronological for the
// time-ordered input the provider delivers. nil or empty input yields an
// empty, non-nil slice.
func Classify(samples []Sample, prefs Preferences) []Day {
	days := []Day{}
	byDate := map[string]int{}

	for _, s := range samples {
		hour := s.At.Hour()
		if hour < prefs.RideStartHour || hour >= prefs.RideEndHour {
			continue
		}

		precip := ClassifyPrecipitation(s.Condition)
		threshold := prefs.MinTempNoPrecip
		if precip != PrecipNone {
			threshold = prefs.MinTempWithPrecip
		}
		suitable := s.FeelsLike >= threshold && (precip != PrecipSnow || prefs.RideInSnow)

		date := s.At.Format("2006-01-02")
		i, ok := byDate[date]
		if !ok {
			days = append(days, Day{
				Date:    date,
				DayName: s.At.Weekday().String(),
			})
			i = len(days) - 1
			byDate[date] = i
		}

		days[i].Windows = append(days[i].Windows, Window{
			At:        s.At,
			FeelsLike: s.FeelsLike,
			Precip:    precip,
			Weather:   s.Description,
			Suitable:  suitable,
		})
		if suitable {
			days[i].SuitableCount++
			days[i].HasSuitableTime = true
		}
	}

	return days
}

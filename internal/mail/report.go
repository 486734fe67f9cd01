package mail

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/mrizzo/bike-weather/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var reportTmpl = template.Must(template.New("report.html").
	Funcs(template.FuncMap{
		"clock": func(t time.Time) string { return t.Format("03:04 PM") },
		"temp":  func(f float64) string { return fmt.Sprintf("%.0f", f) },
	}).
	ParseFS(templateFS, "templates/report.html"))

// ReportData is everything the report template needs for one subscriber.
type ReportData struct {
	City  string
	State string
	Today string // e.g. "Monday, January 5, 2026"

	MinTempNoPrecip   float64
	MinTempWithPrecip float64
	RideInSnow        bool

	Days   []domain.Day
	Travel domain.TravelOptions

	SettingsURL    string
	UnsubscribeURL string
}

// GoodDayNames returns the weekday labels of days with at least one suitable
// window, in forecast order. Used for the summary line.
func (d ReportData) GoodDayNames() []string {
	var names []string
	for _, day := range d.Days {
		if day.HasSuitableTime {
			names = append(names, day.DayName)
		}
	}
	return names
}

// GoodDaySummary joins GoodDayNames for display.
func (d ReportData) GoodDaySummary() string {
	return strings.Join(d.GoodDayNames(), ", ")
}

// RenderReport renders the HTML report email body.
func RenderReport(data ReportData) (string, error) {
	var buf strings.Builder
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail.RenderReport: %w", err)
	}
	return buf.String(), nil
}

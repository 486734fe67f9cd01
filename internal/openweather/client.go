// Package openweather is the HTTP adapter for the OpenWeather forecast and
// geocoding APIs. It converts provider payloads into domain types; it makes
// no suitability decisions of its own.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mrizzo/bike-weather/internal/domain"
)

// Client calls the OpenWeather data and geo APIs.
type Client struct {
	apiKey     string
	httpClient *http.Client
	dataURL    string
	geoURL     string
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client. The timeout bounds each individual
// request; callers own any broader deadline via context.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		dataURL:    "https://api.openweathermap.org/data/2.5",
		geoURL:     "http://api.openweathermap.org/geo/1.0",
		logger:     logger,
	}
}

// Forecast fetches the 5-day/3-hour forecast for the given coordinates and
// returns hourly samples in chronological order. Each sample's timestamp is
// converted into the forecast location's own time zone (the payload carries
// the UTC offset), so calendar-day grouping downstream happens at local
// midnight. Entries with no weather condition block are kept, with an empty
// condition — the classifier treats that as "no precipitation".
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]domain.Sample, error) {
	params := url.Values{
		"lat":   {fmt.Sprintf("%f", lat)},
		"lon":   {fmt.Sprintf("%f", lon)},
		"appid": {c.apiKey},
		"units": {"imperial"},
	}

	var payload forecastResponse
	if err := c.getJSON(ctx, c.dataURL+"/forecast?"+params.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("openweather.Forecast: %w", err)
	}

	loc := time.FixedZone("forecast-local", payload.City.Timezone)
	samples := make([]domain.Sample, 0, len(payload.List))
	for _, entry := range payload.List {
		s := domain.Sample{
			At:        time.Unix(entry.Dt, 0).In(loc),
			FeelsLike: entry.Main.FeelsLike,
		}
		if len(entry.Weather) > 0 {
			s.Condition = entry.Weather[0].Main
			s.Description = entry.Weather[0].Description
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// Geocode resolves a city/state (optionally a ZIP code) to coordinates.
// A ZIP, when given, is tried first; on any ZIP failure the city/state
// lookup runs as the fallback. Returns domain.ErrNotFound when the provider
// has no match for either.
func (c *Client) Geocode(ctx context.Context, city, state, zip string) (domain.Place, error) {
	if zip != "" {
		place, err := c.geocodeZIP(ctx, city, zip)
		if err == nil {
			return place, nil
		}
		c.logger.Debug("zip geocode failed, falling back to city/state",
			"zip", zip, "error", err)
	}
	return c.geocodeDirect(ctx, city, state)
}

func (c *Client) geocodeZIP(ctx context.Context, city, zip string) (domain.Place, error) {
	params := url.Values{
		"zip":   {zip + ",US"},
		"appid": {c.apiKey},
	}

	var payload zipResponse
	if err := c.getJSON(ctx, c.geoURL+"/zip?"+params.Encode(), &payload); err != nil {
		return domain.Place{}, fmt.Errorf("openweather.Geocode: zip: %w", err)
	}

	name := payload.Name
	if name == "" {
		name = city
	}
	return domain.Place{Lat: payload.Lat, Lon: payload.Lon, Name: name}, nil
}

func (c *Client) geocodeDirect(ctx context.Context, city, state string) (domain.Place, error) {
	params := url.Values{
		"q":     {fmt.Sprintf("%s,%s,US", city, state)},
		"limit": {"1"},
		"appid": {c.apiKey},
	}

	var payload []directEntry
	if err := c.getJSON(ctx, c.geoURL+"/direct?"+params.Encode(), &payload); err != nil {
		return domain.Place{}, fmt.Errorf("openweather.Geocode: direct: %w", err)
	}
	if len(payload) == 0 {
		return domain.Place{}, fmt.Errorf("openweather.Geocode: %q, %q: %w", city, state, domain.ErrNotFound)
	}

	name := payload[0].Name
	if name == "" {
		name = city
	}
	return domain.Place{Lat: payload[0].Lat, Lon: payload[0].Lon, Name: name}, nil
}

// getJSON performs a GET and decodes the 200 response body into out.
func (c *Client) getJSON(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// OpenWeather API response types.

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			FeelsLike float64 `json:"feels_like"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
	City struct {
		Timezone int `json:"timezone"` // UTC offset in seconds
	} `json:"city"`
}

type zipResponse struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

type directEntry struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

// Package openmeteo looks up current weather and local time for a city
// via the keyless Open-Meteo geocoding and forecast APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseSizeBytes = 256 << 10

var ErrCityNotFound = errors.New("city not found")

type Config struct {
	GeocodingURL string        `split_words:"true" default:"https://geocoding-api.open-meteo.com/v1"`
	ForecastURL  string        `split_words:"true" default:"https://api.open-meteo.com/v1"`
	Timeout      time.Duration `split_words:"true" default:"10s"`
}

// Report is the combined weather/time lookup result for one city.
type Report struct {
	City         string  `json:"city"`
	Country      string  `json:"country,omitempty"`
	Timezone     string  `json:"timezone"`
	LocalTime    string  `json:"local_time"`
	TemperatureC float64 `json:"temperature_c"`
	WindSpeedKmh float64 `json:"wind_speed_kmh"`
	WeatherCode  int     `json:"weather_code"`
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
		Country   string  `json:"country"`
	} `json:"results"`
}

type forecastResponse struct {
	Timezone       string `json:"timezone"`
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
		Time        string  `json:"time"`
	} `json:"current_weather"`
}

type Client struct {
	geocodingURL string
	forecastURL  string
	httpClient   *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	geocodingURL := strings.TrimRight(strings.TrimSpace(cfg.GeocodingURL), "/")
	forecastURL := strings.TrimRight(strings.TrimSpace(cfg.ForecastURL), "/")
	if geocodingURL == "" || forecastURL == "" {
		return nil, errors.New("openmeteo urls are required")
	}
	for _, u := range []string{geocodingURL, forecastURL} {
		if _, err := url.ParseRequestURI(u); err != nil {
			return nil, fmt.Errorf("invalid openmeteo url %q: %w", u, err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		httpClient:   &http.Client{Timeout: timeout},
	}, nil
}

// Lookup resolves a city name and returns its current weather and local time.
func (c *Client) Lookup(ctx context.Context, city string) (*Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, errors.New("city is empty")
	}

	var geo geocodingResponse
	geoQuery := url.Values{"name": {city}, "count": {"1"}}
	if err := c.getJSON(ctx, c.geocodingURL+"/search?"+geoQuery.Encode(), &geo); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", city, err)
	}
	if len(geo.Results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrCityNotFound, city)
	}
	place := geo.Results[0]

	fcQuery := url.Values{
		"latitude":        {fmt.Sprintf("%.4f", place.Latitude)},
		"longitude":       {fmt.Sprintf("%.4f", place.Longitude)},
		"current_weather": {"true"},
		"timezone":        {"auto"},
	}
	var fc forecastResponse
	if err := c.getJSON(ctx, c.forecastURL+"/forecast?"+fcQuery.Encode(), &fc); err != nil {
		return nil, fmt.Errorf("forecast for %q: %w", city, err)
	}

	timezone := fc.Timezone
	if timezone == "" {
		timezone = place.Timezone
	}

	return &Report{
		City:         place.Name,
		Country:      place.Country,
		Timezone:     timezone,
		LocalTime:    fc.CurrentWeather.Time,
		TemperatureC: fc.CurrentWeather.Temperature,
		WindSpeedKmh: fc.CurrentWeather.WindSpeed,
		WeatherCode:  fc.CurrentWeather.WeatherCode,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status=%d body=%s", resp.StatusCode, truncate(string(raw), 200))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Package weathertime answers weather and local time questions for a
// named city using the Open-Meteo public APIs.
package weathertime

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/kridsada/agentdesk/agent/contract"
	"github.com/kridsada/agentdesk/pkg/openmeteo"
)

const CapabilityID = "weather-time"

// Reporter is what the agent needs from a weather backend.
type Reporter interface {
	Lookup(ctx context.Context, city string) (*openmeteo.Report, error)
}

type Agent struct {
	client Reporter
}

func New(client Reporter) (*Agent, error) {
	if client == nil {
		return nil, errors.New("weather-time agent requires a weather client")
	}
	return &Agent{client: client}, nil
}

func (a *Agent) Describe() contractx.Descriptor {
	return contractx.Descriptor{
		ID:          CapabilityID,
		Keywords:    []string{"weather", "time", "temperature", "forecast", "clock"},
		Description: "Reports current weather and local time for a city.",
	}
}

func (a *Agent) Handle(ctx context.Context, subQuery string, call contractx.CallContext) contractx.Response {
	city := extractCity(subQuery)
	if city == "" {
		return contractx.Failure("could not determine which city to look up")
	}

	report, err := a.client.Lookup(ctx, city)
	if err != nil {
		if errors.Is(err, openmeteo.ErrCityNotFound) {
			return contractx.Failure(fmt.Sprintf("unknown city %q", city))
		}
		log.Error().Err(err).Str("session_id", call.SessionID).Msg("weather lookup failed")
		return contractx.Failure("weather service is unavailable")
	}

	return contractx.Success(map[string]any{
		"city":           report.City,
		"country":        report.Country,
		"timezone":       report.Timezone,
		"local_time":     report.LocalTime,
		"temperature_c":  report.TemperatureC,
		"wind_speed_kmh": report.WindSpeedKmh,
		"weather_code":   report.WeatherCode,
	})
}

var cityPattern = regexp.MustCompile(`(?i)\b(?:in|for|at)\s+([a-zA-Z][a-zA-Z .'-]*)$`)

// extractCity pulls the city name out of phrasings like "weather in
// Tokyo" or "what time is it in New York". Without a preposition the
// whole text minus question words is used.
func extractCity(text string) string {
	text = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), "?!."))
	if text == "" {
		return ""
	}

	if m := cityPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	// "Tokyo weather", "time Tokyo" and similar terse forms.
	fields := strings.Fields(text)
	var kept []string
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "weather", "time", "temperature", "forecast", "clock",
			"what", "whats", "what's", "is", "it", "the", "current",
			"now", "today", "tell", "me", "show", "like":
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

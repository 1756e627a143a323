package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
)

// hourlyVariables is the fixed forecast variable list, in request order.
var hourlyVariables = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"precipitation_probability",
	"precipitation",
	"wind_speed_10m",
	"wind_direction_10m",
	"wind_gusts_10m",
	"soil_moisture_1_to_3cm",
}

// Open-Meteo returns hourly timestamps without a zone when timezone=UTC.
const hourLayout = "2006-01-02T15:04"

// Weather implements domain.WeatherProvider with the Open-Meteo forecast API.
type Weather struct {
	client
}

// NewWeather creates an Open-Meteo forecast client.
func NewWeather(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Weather {
	return &Weather{client: newClient(baseURL, timeout, metrics, logger)}
}

// HourlyWeather fetches pastDays of history plus today and drops hours that
// start after now, so the last sample is the most recent observation.
func (w *Weather) HourlyWeather(ctx context.Context, at domain.Coordinate, pastDays int) (domain.HourlySeries, error) {
	if err := domain.ValidatePastDays(pastDays); err != nil {
		return domain.HourlySeries{}, err
	}

	params := url.Values{
		"latitude":      {strconv.FormatFloat(at.Latitude, 'f', 4, 64)},
		"longitude":     {strconv.FormatFloat(at.Longitude, 'f', 4, 64)},
		"hourly":        {strings.Join(hourlyVariables, ",")},
		"past_days":     {strconv.Itoa(pastDays)},
		"forecast_days": {"1"},
		"timezone":      {"UTC"},
	}

	var resp forecastResponse
	if err := w.getJSON(ctx, w.baseURL+"/v1/forecast?"+params.Encode(), "forecast", &resp); err != nil {
		return domain.HourlySeries{}, err
	}

	series, err := resp.Hourly.series()
	if err != nil {
		return domain.HourlySeries{}, err
	}

	observed := observedHours(series.Times, domain.Now())
	if observed == 0 {
		return domain.HourlySeries{}, fmt.Errorf("%w: forecast has no hours up to now", domain.ErrMalformedResponse)
	}
	if dropped := series.Len() - observed; dropped > 0 {
		w.logger.Debug("dropped future forecast hours", "dropped", dropped, "kept", observed)
	}
	return series.Truncate(observed), nil
}

// observedHours counts the leading hours that start at or before now. Times
// are ascending.
func observedHours(times []time.Time, now time.Time) int {
	n := 0
	for _, t := range times {
		if t.After(now) {
			break
		}
		n++
	}
	return n
}

// Open-Meteo forecast response types. Nulls decode as nil samples.

type forecastResponse struct {
	Hourly hourlyBlock `json:"hourly"`
}

type hourlyBlock struct {
	Time                     []string       `json:"time"`
	Temperature              domain.Samples `json:"temperature_2m"`
	Humidity                 domain.Samples `json:"relative_humidity_2m"`
	PrecipitationProbability domain.Samples `json:"precipitation_probability"`
	Precipitation            domain.Samples `json:"precipitation"`
	WindSpeed                domain.Samples `json:"wind_speed_10m"`
	WindDirection            domain.Samples `json:"wind_direction_10m"`
	WindGusts                domain.Samples `json:"wind_gusts_10m"`
	SoilMoisture             domain.Samples `json:"soil_moisture_1_to_3cm"`
}

func (h hourlyBlock) series() (domain.HourlySeries, error) {
	if len(h.Time) == 0 {
		return domain.HourlySeries{}, fmt.Errorf("%w: forecast has no hourly data", domain.ErrMalformedResponse)
	}

	times := make([]time.Time, len(h.Time))
	for i, s := range h.Time {
		t, err := time.ParseInLocation(hourLayout, s, time.UTC)
		if err != nil {
			return domain.HourlySeries{}, fmt.Errorf("%w: hourly time %q: %w", domain.ErrMalformedResponse, s, err)
		}
		times[i] = t
	}

	series := domain.HourlySeries{
		Times:                    times,
		Temperature:              h.Temperature,
		Humidity:                 h.Humidity,
		WindSpeed:                h.WindSpeed,
		WindDirection:            h.WindDirection,
		WindGusts:                h.WindGusts,
		Precipitation:            h.Precipitation,
		PrecipitationProbability: h.PrecipitationProbability,
		SoilMoisture:             h.SoilMoisture,
	}
	if err := series.Validate(); err != nil {
		return domain.HourlySeries{}, err
	}
	return series, nil
}

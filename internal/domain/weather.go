package domain

import (
	"fmt"
	"time"
)

// Trend thresholds.
const (
	DryPrecipitationMm = 0.1  // an hour with less precipitation is dry
	HighWindSpeedKmh   = 20.0 // an hour with more wind is high-wind
	LowHumidityPercent = 30.0 // an hour with less humidity is low-humidity
)

// Weather window bounds, in days before today. Open-Meteo serves at most 92.
const (
	DefaultPastDays   = 30
	MaxPastDays       = 92
	minSeriesPastDays = 1

	hoursPerDay = 24
)

// Samples is one hourly variable. A nil element is an explicit null.
type Samples []*float64

// Float returns a pointer to v, for building samples and conditions.
func Float(v float64) *float64 {
	return &v
}

// FromValues builds Samples with no nulls.
func FromValues(values ...float64) Samples {
	s := make(Samples, len(values))
	for i := range values {
		s[i] = Float(values[i])
	}
	return s
}

// Mean returns the arithmetic mean of the non-null samples, or 0 when every
// sample is null.
func (s Samples) Mean() float64 {
	var sum float64
	var n int
	for _, v := range s {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Latest returns the most recent non-null sample, or nil if there is none.
func (s Samples) Latest() *float64 {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != nil {
			v := *s[i]
			return &v
		}
	}
	return nil
}

// HourlySeries is the hourly weather window for one location. Index 0 is the
// first hour of the fetched window; every array has the same length.
type HourlySeries struct {
	Times                    []time.Time `json:"times,omitempty"`
	Temperature              Samples     `json:"temperature"`
	Humidity                 Samples     `json:"humidity"`
	WindSpeed                Samples     `json:"wind_speed"`
	WindDirection            Samples     `json:"wind_direction"`
	WindGusts                Samples     `json:"wind_gusts"`
	Precipitation            Samples     `json:"precipitation"`
	PrecipitationProbability Samples     `json:"precipitation_probability"`
	SoilMoisture             Samples     `json:"soil_moisture"`
}

// Len returns the number of hours in the series.
func (s HourlySeries) Len() int {
	return len(s.Temperature)
}

// Validate checks that every array has the same length as Temperature.
// Times is optional but must match when present.
func (s HourlySeries) Validate() error {
	n := s.Len()
	fields := []struct {
		name string
		len  int
	}{
		{"humidity", len(s.Humidity)},
		{"wind_speed", len(s.WindSpeed)},
		{"wind_direction", len(s.WindDirection)},
		{"wind_gusts", len(s.WindGusts)},
		{"precipitation", len(s.Precipitation)},
		{"precipitation_probability", len(s.PrecipitationProbability)},
		{"soil_moisture", len(s.SoilMoisture)},
	}
	for _, f := range fields {
		if f.len != n {
			return fmt.Errorf("%w: hourly %s has %d samples, temperature has %d", ErrValidation, f.name, f.len, n)
		}
	}
	if s.Times != nil && len(s.Times) != n {
		return fmt.Errorf("%w: hourly time has %d entries, temperature has %d", ErrValidation, len(s.Times), n)
	}
	return nil
}

// Truncate returns the first n hours of the series.
func (s HourlySeries) Truncate(n int) HourlySeries {
	if n < 0 {
		n = 0
	}
	if n >= s.Len() {
		return s
	}
	out := HourlySeries{
		Temperature:              s.Temperature[:n],
		Humidity:                 s.Humidity[:n],
		WindSpeed:                s.WindSpeed[:n],
		WindDirection:            s.WindDirection[:n],
		WindGusts:                s.WindGusts[:n],
		Precipitation:            s.Precipitation[:n],
		PrecipitationProbability: s.PrecipitationProbability[:n],
		SoilMoisture:             s.SoilMoisture[:n],
	}
	if s.Times != nil {
		out.Times = s.Times[:n]
	}
	return out
}

// Conditions are the current-hour readings used for scoring and prompts.
// A nil field means the reading is unavailable.
type Conditions struct {
	Temperature              *float64 `json:"temperature"`
	Humidity                 *float64 `json:"humidity"`
	WindSpeed                *float64 `json:"wind_speed"`
	WindDirection            *float64 `json:"wind_direction"`
	WindGusts                *float64 `json:"wind_gusts"`
	Precipitation            *float64 `json:"precipitation"`
	PrecipitationProbability *float64 `json:"precipitation_probability"`
	SoilMoisture             *float64 `json:"soil_moisture"`
}

// CurrentConditions selects the most recent reading of every variable: the
// last sample of the window, stepping back past trailing nulls.
func CurrentConditions(s HourlySeries) Conditions {
	return Conditions{
		Temperature:              s.Temperature.Latest(),
		Humidity:                 s.Humidity.Latest(),
		WindSpeed:                s.WindSpeed.Latest(),
		WindDirection:            s.WindDirection.Latest(),
		WindGusts:                s.WindGusts.Latest(),
		Precipitation:            s.Precipitation.Latest(),
		PrecipitationProbability: s.PrecipitationProbability.Latest(),
		SoilMoisture:             s.SoilMoisture.Latest(),
	}
}

// HistoricalTrend summarizes a weather window. Day counters never exceed Days.
type HistoricalTrend struct {
	AvgTemperature  float64 `json:"avg_temperature"`
	AvgHumidity     float64 `json:"avg_humidity"`
	AvgWindSpeed    float64 `json:"avg_wind_speed"`
	AvgSoilMoisture float64 `json:"avg_soil_moisture"`
	DryDays         int     `json:"dry_days"`
	HighWindDays    int     `json:"high_wind_days"`
	LowHumidityDays int     `json:"low_humidity_days"`
	Days            int     `json:"days"`
}

// AggregateTrend reduces an hourly series to day-level counters and hourly
// means. Hours are bucketed by index/24; a trailing partial day is still
// evaluated.
func AggregateTrend(s HourlySeries) (HistoricalTrend, error) {
	if err := s.Validate(); err != nil {
		return HistoricalTrend{}, err
	}

	n := s.Len()
	trend := HistoricalTrend{
		AvgTemperature:  s.Temperature.Mean(),
		AvgHumidity:     s.Humidity.Mean(),
		AvgWindSpeed:    s.WindSpeed.Mean(),
		AvgSoilMoisture: s.SoilMoisture.Mean(),
		Days:            (n + hoursPerDay - 1) / hoursPerDay,
	}

	for start := 0; start < n; start += hoursPerDay {
		end := min(start+hoursPerDay, n)
		if anyHour(s.Precipitation[start:end], func(v float64) bool { return v < DryPrecipitationMm }) {
			trend.DryDays++
		}
		if anyHour(s.WindSpeed[start:end], func(v float64) bool { return v > HighWindSpeedKmh }) {
			trend.HighWindDays++
		}
		if anyHour(s.Humidity[start:end], func(v float64) bool { return v < LowHumidityPercent }) {
			trend.LowHumidityDays++
		}
	}

	return trend, nil
}

func anyHour(day Samples, pred func(float64) bool) bool {
	for _, v := range day {
		if v != nil && pred(*v) {
			return true
		}
	}
	return false
}

// ValidatePastDays checks a weather window size.
func ValidatePastDays(days int) error {
	if days < minSeriesPastDays || days > MaxPastDays {
		return fmt.Errorf("%w: past days must be between %d and %d, got %d", ErrValidation, minSeriesPastDays, MaxPastDays, days)
	}
	return nil
}

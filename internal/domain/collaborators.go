package domain

import "context"

// Place is a geocoded location.
type Place struct {
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
}

// Geocoder resolves free text to a place.
type Geocoder interface {
	// Geocode returns the best match for query. found is false when the
	// provider has no match; err is reserved for transport failures.
	Geocode(ctx context.Context, query string) (place Place, found bool, err error)
}

// WeatherProvider fetches the hourly series for a location, starting
// pastDays days ago and ending at the most recent hour.
type WeatherProvider interface {
	HourlyWeather(ctx context.Context, at Coordinate, pastDays int) (HourlySeries, error)
}

// FireProvider fetches active incidents and perimeters within radiusKm.
type FireProvider interface {
	ActiveFires(ctx context.Context, at Coordinate, radiusKm float64) (FireReport, error)
}

// TextGenerator sends a prompt to a generative text model and returns the
// raw reply. The reply is not guaranteed to be well-formed.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

package openmeteo

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
)

// Geocoder implements domain.Geocoder with the Open-Meteo geocoding API.
type Geocoder struct {
	client
}

// NewGeocoder creates an Open-Meteo geocoding client.
func NewGeocoder(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Geocoder {
	return &Geocoder{client: newClient(baseURL, timeout, metrics, logger)}
}

// Geocode returns the top match for query.
func (g *Geocoder) Geocode(ctx context.Context, query string) (domain.Place, bool, error) {
	params := url.Values{
		"name":     {query},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}

	start := time.Now()
	var resp geocodingResponse
	err := g.getJSON(ctx, g.baseURL+"/v1/search?"+params.Encode(), "geocode", &resp)
	g.metrics.GeocodeAPIDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	if err != nil {
		g.metrics.GeocodeRequests.WithLabelValues(providerName, "error").Inc()
		return domain.Place{}, false, err
	}
	if len(resp.Results) == 0 {
		g.metrics.GeocodeRequests.WithLabelValues(providerName, "empty").Inc()
		g.logger.Debug("geocode returned no results", "query", query)
		return domain.Place{}, false, nil
	}

	g.metrics.GeocodeRequests.WithLabelValues(providerName, "success").Inc()
	r := resp.Results[0]
	return domain.Place{
		Name:       r.Name,
		Coordinate: domain.Coordinate{Latitude: r.Latitude, Longitude: r.Longitude},
	}, true, nil
}

// Open-Meteo geocoding response types. Results is omitted when nothing matches.

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

type geocodingResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

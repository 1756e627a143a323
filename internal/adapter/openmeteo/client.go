// Package openmeteo implements domain.Geocoder and domain.WeatherProvider on
// the keyless Open-Meteo geocoding and forecast APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
)

const providerName = "openmeteo"

// client is the HTTP plumbing shared by the geocoding and forecast clients.
type client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

func newClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) client {
	return client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// getJSON performs one GET and decodes the body into v. Transport failures
// and non-200 responses wrap domain.ErrUpstreamUnavailable; undecodable
// bodies wrap domain.ErrMalformedResponse.
func (c client) getJSON(ctx context.Context, fullURL, source string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s request: %w", domain.ErrUpstreamUnavailable, source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: open-meteo %s: status %d: %s", domain.ErrUpstreamUnavailable, source, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrMalformedResponse, source, err)
	}
	return nil
}

// Package app wires configured adapters into an Assessor. Both binaries use
// it so the server and the one-shot CLI assess identically.
package app

import (
	"context"
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wildfire-risk-service/internal/adapter/gemini"
	"github.com/couchcryptid/wildfire-risk-service/internal/adapter/mapbox"
	"github.com/couchcryptid/wildfire-risk-service/internal/adapter/nifc"
	"github.com/couchcryptid/wildfire-risk-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/wildfire-risk-service/internal/config"
	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/narrative"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
	"github.com/couchcryptid/wildfire-risk-service/internal/pipeline"
)

// NewGeocoder returns the Mapbox client when enabled and the keyless
// Open-Meteo geocoder otherwise, wrapped in the LRU cache either way.
func NewGeocoder(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) domain.Geocoder {
	var inner domain.Geocoder
	if cfg.MapboxEnabled {
		inner = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		inner = openmeteo.NewGeocoder(cfg.GeocodingBaseURL, cfg.UpstreamTimeout, metrics, logger)
		metrics.GeocodeEnabled.Set(0)
		logger.Info("mapbox geocoding disabled, using open-meteo geocoding")
	}
	return mapbox.NewCachedGeocoder(inner, cfg.MapboxCacheSize, metrics)
}

// NewNarrativeGenerator enables the generative narrator when a Gemini API
// key is configured. Without one every narrative comes from the fallback.
func NewNarrativeGenerator(cfg *config.Config, logger *slog.Logger) *narrative.Generator {
	if cfg.GeminiAPIKey == "" {
		logger.Info("generative narrative disabled, GEMINI_API_KEY not set")
		return narrative.NewGenerator(nil, cfg.NarrativeTimeout, logger)
	}
	client := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.NarrativeTimeout, logger)
	primary := narrative.NewGenerative(client, cfg.NarrativeCooldown, logger)
	logger.Info("generative narrative enabled", "model", cfg.GeminiModel, "cooldown", cfg.NarrativeCooldown)
	return narrative.NewGenerator(primary, cfg.NarrativeTimeout, logger)
}

// NewAssessor builds the assessment pipeline from configuration.
func NewAssessor(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *pipeline.Assessor {
	return pipeline.NewAssessor(
		pipeline.Collaborators{
			Geocoder: NewGeocoder(cfg, logger, metrics),
			Weather:  openmeteo.NewWeather(cfg.WeatherBaseURL, cfg.UpstreamTimeout, metrics, logger),
			Fires:    nifc.NewClient(cfg.FireIncidentsURL, cfg.FirePerimetersURL, cfg.UpstreamTimeout, logger),
		},
		NewNarrativeGenerator(cfg, logger),
		pipeline.AssessorConfig{
			PastDays:        cfg.WeatherPastDays,
			UpstreamTimeout: cfg.UpstreamTimeout,
		},
		logger,
		metrics,
	)
}

// Readiness reports ready only when every check passes. An empty set is
// always ready.
type Readiness []sharedobs.ReadinessChecker

func (r Readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

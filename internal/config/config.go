package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Default collaborator endpoints.
const (
	DefaultWeatherBaseURL    = "https://api.open-meteo.com"
	DefaultGeocodingBaseURL  = "https://geocoding-api.open-meteo.com"
	DefaultFireIncidentsURL  = "https://services3.arcgis.com/T4QMspbfLg3qTGWY/arcgis/rest/services/WFIGS_Incident_Locations_Current/FeatureServer/0/query"
	DefaultFirePerimetersURL = "https://services3.arcgis.com/T4QMspbfLg3qTGWY/arcgis/rest/services/WFIGS_Interagency_Perimeters_Current/FeatureServer/0/query"
	DefaultGeminiBaseURL     = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel       = "gemini-2.0-flash"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream collaborators.
	UpstreamTimeout   time.Duration
	WeatherBaseURL    string
	GeocodingBaseURL  string
	WeatherPastDays   int
	FireIncidentsURL  string
	FirePerimetersURL string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Generative narrative configuration. Empty GeminiAPIKey disables it.
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	NarrativeTimeout  time.Duration
	NarrativeCooldown time.Duration

	// Request stream.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Optional Postgres sink and watch list.
	DatabaseURL    string
	WatchLocations []string
	WatchSchedule  string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := parseDuration("UPSTREAM_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	narrativeTimeout, err := parseDuration("NARRATIVE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	narrativeCooldown, err := parseDuration("NARRATIVE_COOLDOWN", "1m")
	if err != nil {
		return nil, err
	}

	pastDays, err := parsePastDays()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		UpstreamTimeout:   upstreamTimeout,
		WeatherBaseURL:    sharedcfg.EnvOrDefault("WEATHER_BASE_URL", DefaultWeatherBaseURL),
		GeocodingBaseURL:  sharedcfg.EnvOrDefault("GEOCODING_BASE_URL", DefaultGeocodingBaseURL),
		WeatherPastDays:   pastDays,
		FireIncidentsURL:  sharedcfg.EnvOrDefault("FIRE_INCIDENTS_URL", DefaultFireIncidentsURL),
		FirePerimetersURL: sharedcfg.EnvOrDefault("FIRE_PERIMETERS_URL", DefaultFirePerimetersURL),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       sharedcfg.EnvOrDefault("GEMINI_MODEL", DefaultGeminiModel),
		GeminiBaseURL:     sharedcfg.EnvOrDefault("GEMINI_BASE_URL", DefaultGeminiBaseURL),
		NarrativeTimeout:  narrativeTimeout,
		NarrativeCooldown: narrativeCooldown,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "fire-risk-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "fire-risk-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "wildfire-risk-service"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		WatchLocations: splitList(os.Getenv("WATCH_LOCATIONS")),
		WatchSchedule:  sharedcfg.EnvOrDefault("WATCH_SCHEDULE", "@hourly"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parsePastDays reads WEATHER_PAST_DAYS, which must be within Open-Meteo's
// 1..92 range.
func parsePastDays() (int, error) {
	s := sharedcfg.EnvOrDefault("WEATHER_PAST_DAYS", "30")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 92 {
		return 0, fmt.Errorf("invalid WEATHER_PAST_DAYS %q: must be 1-92", s)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

// splitList splits a semicolon-separated list, dropping blank entries.
// Semicolons keep "City, Region" queries intact.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

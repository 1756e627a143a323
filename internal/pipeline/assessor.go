package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/narrative"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultUpstreamTimeout bounds each geocode, weather and fire request.
const DefaultUpstreamTimeout = 10 * time.Second

// NarrativeGenerator writes the prose for a scored input. It never fails.
type NarrativeGenerator interface {
	Generate(ctx context.Context, in narrative.Input) (domain.RiskAssessment, domain.NarrativeSource)
}

// Collaborators are the external data sources an assessment reads.
type Collaborators struct {
	Geocoder domain.Geocoder
	Weather  domain.WeatherProvider
	Fires    domain.FireProvider
}

// AssessorConfig tunes an Assessor. Zero values take the defaults.
type AssessorConfig struct {
	PastDays        int
	UpstreamTimeout time.Duration
}

// Assessor runs the full assessment for one free-text location: resolve,
// fetch weather and fires in parallel, aggregate, score, narrate.
type Assessor struct {
	geocoder domain.Geocoder
	weather  domain.WeatherProvider
	fires    domain.FireProvider
	narrator NarrativeGenerator
	pastDays int
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewAssessor creates an Assessor.
func NewAssessor(c Collaborators, narrator NarrativeGenerator, cfg AssessorConfig, logger *slog.Logger, metrics *observability.Metrics) *Assessor {
	if cfg.PastDays == 0 {
		cfg.PastDays = domain.DefaultPastDays
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = DefaultUpstreamTimeout
	}
	return &Assessor{
		geocoder: c.Geocoder,
		weather:  c.Weather,
		fires:    c.Fires,
		narrator: narrator,
		pastDays: cfg.PastDays,
		timeout:  cfg.UpstreamTimeout,
		logger:   logger,
		metrics:  metrics,
	}
}

// Assess returns the report for query. Errors wrap domain.ErrNotFound,
// domain.ErrUpstreamUnavailable or domain.ErrValidation. A fire-data failure
// is not an error: the report is scored without fire activity and marked
// Degraded.
func (a *Assessor) Assess(ctx context.Context, query string) (domain.Report, error) {
	report, err := a.assess(ctx, strings.TrimSpace(query))
	a.metrics.Assessments.WithLabelValues(outcome(err)).Inc()
	return report, err
}

func (a *Assessor) assess(ctx context.Context, query string) (domain.Report, error) {
	place, err := a.resolve(ctx, query)
	if err != nil {
		return domain.Report{}, err
	}

	series, fires, degraded, err := a.fetch(ctx, place)
	if err != nil {
		return domain.Report{}, err
	}

	trend, err := domain.AggregateTrend(series)
	if err != nil {
		return domain.Report{}, fmt.Errorf("aggregate trend for %q: %w", place.Name, err)
	}
	current := domain.CurrentConditions(series)

	score := domain.ScoreRisk(current, trend, fires)
	a.metrics.RiskPercentage.Observe(float64(score.Percentage))

	start := time.Now()
	assessment, source := a.narrator.Generate(ctx, narrative.Input{
		CityName:   place.Name,
		Conditions: current,
		Trend:      trend,
		Fires:      fires,
		Score:      score,
	})
	a.observe("narrative", start)
	a.metrics.NarrativeSource.WithLabelValues(string(source)).Inc()

	a.logger.Info("assessment complete",
		"query", query,
		"city", place.Name,
		"risk_percentage", score.Percentage,
		"risk_level", score.Level,
		"narrative_source", source,
		"degraded", degraded,
	)

	return domain.Report{
		ID:              uuid.NewString(),
		Query:           query,
		Place:           place,
		Conditions:      current,
		Trend:           trend,
		Fires:           fires,
		Score:           score,
		Assessment:      assessment,
		NarrativeSource: source,
		Degraded:        degraded,
		AssessedAt:      domain.Now(),
	}, nil
}

func (a *Assessor) resolve(ctx context.Context, query string) (domain.Place, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	place, err := domain.Resolve(ctx, a.geocoder, query)
	a.observe("geocoder", start)
	return place, err
}

// fetch runs the weather and fire requests concurrently. A weather failure
// cancels the fire request and aborts; a fire failure degrades to an empty
// summary.
func (a *Assessor) fetch(ctx context.Context, place domain.Place) (domain.HourlySeries, domain.FireSummary, bool, error) {
	var (
		series  domain.HourlySeries
		report  domain.FireReport
		fireErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(gctx, a.timeout)
		defer cancel()

		start := time.Now()
		s, err := a.weather.HourlyWeather(ctx, place.Coordinate, a.pastDays)
		a.observe("weather", start)
		if err != nil {
			return weatherError(place, err)
		}
		series = s
		return nil
	})
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(gctx, a.timeout)
		defer cancel()

		start := time.Now()
		report, fireErr = a.fires.ActiveFires(ctx, place.Coordinate, domain.FireSearchRadiusKm)
		a.observe("fires", start)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.HourlySeries{}, domain.FireSummary{}, false, err
	}

	if fireErr != nil {
		a.logger.Warn("fire data unavailable, scoring without it",
			"city", place.Name,
			"error", fireErr,
		)
		a.metrics.FireDegraded.Inc()
		return series, domain.EmptyFireSummary(), true, nil
	}
	return series, domain.BuildFireSummary(place.Coordinate, report), false, nil
}

// weatherError keeps validation and upstream classes and files anything
// else, such as an unparseable body, under ErrUpstreamUnavailable.
func weatherError(place domain.Place, err error) error {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrUpstreamUnavailable) {
		return fmt.Errorf("weather for %q: %w", place.Name, err)
	}
	return fmt.Errorf("%w: weather for %q: %w", domain.ErrUpstreamUnavailable, place.Name, err)
}

func (a *Assessor) observe(collaborator string, start time.Time) {
	a.metrics.UpstreamDuration.WithLabelValues(collaborator).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation_error"
	default:
		return "upstream_error"
	}
}

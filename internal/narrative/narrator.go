// Package narrative turns a risk score and its inputs into the prose half of
// a RiskAssessment. Two Narrators implement the same operation: Generative
// asks a text model, Fallback fills fixed phrase banks. Generator picks one
// per call and guarantees a result.
package narrative

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
)

// DefaultTimeout bounds a single generative attempt.
const DefaultTimeout = 15 * time.Second

// Input is everything a narrator may describe.
type Input struct {
	CityName   string
	Conditions domain.Conditions
	Trend      domain.HistoricalTrend
	Fires      domain.FireSummary
	Score      domain.RiskScore
}

// Narrator produces the three narrative lists for an input.
type Narrator interface {
	Narrate(ctx context.Context, in Input) (domain.Narrative, error)
}

// HealthCheckedNarrator is a Narrator that can report it should be skipped.
type HealthCheckedNarrator interface {
	Narrator
	Available(ctx context.Context) bool
}

// Generator selects the generative narrator when it is configured and
// healthy and falls back to the deterministic one otherwise.
type Generator struct {
	primary  HealthCheckedNarrator
	fallback Narrator
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGenerator creates a Generator. Pass a nil primary to always use the
// fallback phrase banks.
func NewGenerator(primary HealthCheckedNarrator, timeout time.Duration, logger *slog.Logger) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{
		primary:  primary,
		fallback: Fallback{},
		timeout:  timeout,
		logger:   logger,
	}
}

// Generate returns an assessment for in and the narrator that wrote it. It
// never fails: any generative error is logged and the fallback is used.
func (g *Generator) Generate(ctx context.Context, in Input) (domain.RiskAssessment, domain.NarrativeSource) {
	if g.primary != nil && g.primary.Available(ctx) {
		n, err := g.tryPrimary(ctx, in)
		if err == nil {
			return domain.NewRiskAssessment(in.CityName, in.Score, n), domain.SourceGenerative
		}
		g.logger.Warn("generative narrative failed, using fallback",
			"city", in.CityName,
			"error", err,
		)
	}

	// Fallback never returns an error.
	n, _ := g.fallback.Narrate(ctx, in)
	return domain.NewRiskAssessment(in.CityName, in.Score, n), domain.SourceFallback
}

func (g *Generator) tryPrimary(ctx context.Context, in Input) (domain.Narrative, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.primary.Narrate(ctx, in)
}

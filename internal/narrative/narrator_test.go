package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNarrator struct {
	narrative domain.Narrative
	err       error
	available bool
	wait      bool
	calls     int
}

func (s *stubNarrator) Available(context.Context) bool { return s.available }

func (s *stubNarrator) Narrate(ctx context.Context, _ Input) (domain.Narrative, error) {
	s.calls++
	if s.wait {
		<-ctx.Done()
		return domain.Narrative{}, ctx.Err()
	}
	return s.narrative, s.err
}

func modelNarrative() domain.Narrative {
	return domain.Narrative{
		KeyRiskFactors:        []string{"model factor one", "model factor two"},
		CurrentConcerns:       []string{"model concern one", "model concern two"},
		SafetyRecommendations: []string{"model rec one", "model rec two"},
	}
}

func TestGenerator_UsesPrimary(t *testing.T) {
	primary := &stubNarrator{narrative: modelNarrative(), available: true}
	g := NewGenerator(primary, time.Second, discardLogger())

	a, source := g.Generate(context.Background(), highRiskInput())
	assert.Equal(t, domain.SourceGenerative, source)
	assert.Equal(t, "model factor one", a.KeyRiskFactors[0])
	assert.Equal(t, 90, a.RiskPercentage)
	assert.Equal(t, domain.RiskHigh, a.RiskLevel)
	assert.Equal(t, "Los Angeles", a.CityName)
}

func TestGenerator_FallsBack(t *testing.T) {
	tests := map[string]*stubNarrator{
		"upstream error": {err: domain.ErrUpstreamUnavailable, available: true},
		"malformed":      {err: domain.ErrMalformedResponse, available: true},
		"other error":    {err: errors.New("boom"), available: true},
	}
	for name, primary := range tests {
		t.Run(name, func(t *testing.T) {
			g := NewGenerator(primary, time.Second, discardLogger())
			a, source := g.Generate(context.Background(), highRiskInput())

			assert.Equal(t, domain.SourceFallback, source)
			assert.Equal(t, 1, primary.calls)
			require.NoError(t, a.Validate())
			assert.Equal(t, 90, a.RiskPercentage, "fallback keeps the computed score")
		})
	}
}

func TestGenerator_SkipsUnavailablePrimary(t *testing.T) {
	primary := &stubNarrator{narrative: modelNarrative(), available: false}
	g := NewGenerator(primary, time.Second, discardLogger())

	_, source := g.Generate(context.Background(), highRiskInput())
	assert.Equal(t, domain.SourceFallback, source)
	assert.Zero(t, primary.calls)
}

func TestGenerator_NilPrimary(t *testing.T) {
	g := NewGenerator(nil, 0, discardLogger())

	a, source := g.Generate(context.Background(), highRiskInput())
	assert.Equal(t, domain.SourceFallback, source)
	require.NoError(t, a.Validate())
}

func TestGenerator_Timeout(t *testing.T) {
	primary := &stubNarrator{available: true, wait: true}
	g := NewGenerator(primary, 20*time.Millisecond, discardLogger())

	start := time.Now()
	_, source := g.Generate(context.Background(), highRiskInput())
	assert.Equal(t, domain.SourceFallback, source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(highRiskInput())

	for _, want := range []string{
		"Los Angeles",
		"Temperature: 32.00 °C",
		"Relative humidity: 18.00 %",
		"Wind speed: unknown km/h",
		"Last 31 days",
		"Dry days: 22",
		"Active incidents: 1",
		"Canyon Fire, 5.0 km away, 1200 acres, containment 65%",
		"scored as 90%, level High",
		`"riskLevel": "High"`,
	} {
		assert.Contains(t, p, want)
	}
	assert.False(t, strings.Contains(p, "%!"), "prompt has a formatting error:\n%s", p)
}

func TestBuildPrompt_NoIncident(t *testing.T) {
	in := highRiskInput()
	in.Fires = domain.EmptyFireSummary()

	assert.Contains(t, BuildPrompt(in), "Nearest incident: none")
}

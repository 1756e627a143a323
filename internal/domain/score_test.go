package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conditions(temp, humidity, wind, soil float64) Conditions {
	return Conditions{
		Temperature:  Float(temp),
		Humidity:     Float(humidity),
		WindSpeed:    Float(wind),
		SoilMoisture: Float(soil),
	}
}

func TestScoreRisk_LosAngelesScenario(t *testing.T) {
	current := conditions(32, 18, 35, 0.05)
	fires := BuildFireSummary(losAngeles, FireReport{
		Incidents: []FireIncident{
			{Name: "Canyon Fire", Location: northOf(losAngeles, 5), SizeAcres: 1200, ContainmentPercent: Float(65)},
		},
		Perimeters: []FirePerimeter{{Acres: 1200}},
	})
	trend := HistoricalTrend{DryDays: 22, HighWindDays: 16, LowHumidityDays: 12}

	score := ScoreRisk(current, trend, fires)

	assert.GreaterOrEqual(t, score.Percentage, 90)
	assert.Equal(t, RiskHigh, score.Level)
	assert.Equal(t, ScoreBreakdown{Current: 50, Fire: 15, Trend: 25}, score.Breakdown)
	assert.Equal(t, 90, score.Percentage)
}

func TestScoreRisk_Maximum(t *testing.T) {
	fires := FireSummary{
		ActiveCount:      6,
		TotalBurnedAcres: 5000,
		NearestIncident:  &NearestIncident{DistanceKm: 1},
	}
	trend := HistoricalTrend{DryDays: 30, HighWindDays: 30, LowHumidityDays: 30}

	score := ScoreRisk(conditions(45, 5, 80, 0), trend, fires)

	assert.Equal(t, 100, score.Percentage)
	assert.Equal(t, ScoreBreakdown{Current: 50, Fire: 25, Trend: 25}, score.Breakdown)
}

func TestScoreRisk_Minimum(t *testing.T) {
	score := ScoreRisk(conditions(5, 90, 2, 0.45), HistoricalTrend{}, EmptyFireSummary())
	assert.Zero(t, score.Percentage)
	assert.Equal(t, RiskLow, score.Level)
}

func TestScoreRisk_MissingReadingsScoreZero(t *testing.T) {
	score := ScoreRisk(Conditions{}, HistoricalTrend{}, EmptyFireSummary())
	assert.Zero(t, score.Percentage)
}

func TestScoreRisk_CurrentTiers(t *testing.T) {
	tests := []struct {
		name string
		c    Conditions
		want int
	}{
		{"temperature 31", Conditions{Temperature: Float(31)}, 10},
		{"temperature 30 is the lower tier", Conditions{Temperature: Float(30)}, 7},
		{"temperature 21", Conditions{Temperature: Float(21)}, 5},
		{"temperature 16", Conditions{Temperature: Float(16)}, 3},
		{"temperature 15", Conditions{Temperature: Float(15)}, 0},
		{"humidity 29", Conditions{Humidity: Float(29)}, 15},
		{"humidity 30", Conditions{Humidity: Float(30)}, 10},
		{"humidity 45", Conditions{Humidity: Float(45)}, 5},
		{"humidity 50", Conditions{Humidity: Float(50)}, 0},
		{"wind 31", Conditions{WindSpeed: Float(31)}, 15},
		{"wind 25", Conditions{WindSpeed: Float(25)}, 10},
		{"wind 11", Conditions{WindSpeed: Float(11)}, 5},
		{"wind 10", Conditions{WindSpeed: Float(10)}, 0},
		{"soil 0.09", Conditions{SoilMoisture: Float(0.09)}, 10},
		{"soil 0.15", Conditions{SoilMoisture: Float(0.15)}, 7},
		{"soil 0.25", Conditions{SoilMoisture: Float(0.25)}, 3},
		{"soil 0.3", Conditions{SoilMoisture: Float(0.3)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreRisk(tt.c, HistoricalTrend{}, EmptyFireSummary())
			assert.Equal(t, tt.want, got.Breakdown.Current)
		})
	}
}

func TestScoreRisk_FireTiers(t *testing.T) {
	near := func(km float64) *NearestIncident { return &NearestIncident{DistanceKm: km} }
	tests := []struct {
		name  string
		fires FireSummary
		want  int
	}{
		{"nearest 9km", FireSummary{ActiveCount: 1, NearestIncident: near(9)}, 10},
		{"nearest 10km", FireSummary{ActiveCount: 1, NearestIncident: near(10)}, 7},
		{"nearest 30km", FireSummary{ActiveCount: 1, NearestIncident: near(30)}, 3},
		{"nearest 50km", FireSummary{ActiveCount: 1, NearestIncident: near(50)}, 0},
		{"two active", FireSummary{ActiveCount: 2, NearestIncident: near(60)}, 3},
		{"four active", FireSummary{ActiveCount: 4, NearestIncident: near(60)}, 7},
		{"six active", FireSummary{ActiveCount: 6, NearestIncident: near(60)}, 10},
		{"burned 101", FireSummary{TotalBurnedAcres: 101}, 1},
		{"burned 600", FireSummary{TotalBurnedAcres: 600}, 3},
		{"burned 1000", FireSummary{TotalBurnedAcres: 1000}, 3},
		{"burned 1001", FireSummary{TotalBurnedAcres: 1001}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreRisk(Conditions{}, HistoricalTrend{}, tt.fires)
			assert.Equal(t, tt.want, got.Breakdown.Fire)
		})
	}
}

func TestScoreRisk_TrendTiers(t *testing.T) {
	tests := []struct {
		name  string
		trend HistoricalTrend
		want  int
	}{
		{"dry 21", HistoricalTrend{DryDays: 21}, 10},
		{"dry 16", HistoricalTrend{DryDays: 16}, 7},
		{"dry 11", HistoricalTrend{DryDays: 11}, 3},
		{"dry 10", HistoricalTrend{DryDays: 10}, 0},
		{"wind 16", HistoricalTrend{HighWindDays: 16}, 10},
		{"wind 11", HistoricalTrend{HighWindDays: 11}, 7},
		{"wind 6", HistoricalTrend{HighWindDays: 6}, 3},
		{"low humidity 11", HistoricalTrend{LowHumidityDays: 11}, 5},
		{"low humidity 8", HistoricalTrend{LowHumidityDays: 8}, 3},
		{"low humidity 4", HistoricalTrend{LowHumidityDays: 4}, 1},
		{"low humidity 3", HistoricalTrend{LowHumidityDays: 3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreRisk(Conditions{}, tt.trend, EmptyFireSummary())
			assert.Equal(t, tt.want, got.Breakdown.Trend)
		})
	}
}

func TestScoreRisk_AlwaysInRange(t *testing.T) {
	temps := []float64{-10, 16, 22, 27, 40}
	humidities := []float64{5, 35, 45, 80}
	winds := []float64{0, 15, 25, 60}
	counts := []int{0, 2, 4, 9}
	days := []int{0, 6, 12, 25}

	for _, temp := range temps {
		for _, hum := range humidities {
			for _, wind := range winds {
				for _, n := range counts {
					for _, d := range days {
						fires := FireSummary{ActiveCount: n, TotalBurnedAcres: float64(n) * 400}
						if n > 0 {
							fires.NearestIncident = &NearestIncident{DistanceKm: float64(d)}
						}
						score := ScoreRisk(conditions(temp, hum, wind, 0.05),
							HistoricalTrend{DryDays: d, HighWindDays: d, LowHumidityDays: d}, fires)
						require.GreaterOrEqual(t, score.Percentage, 0)
						require.LessOrEqual(t, score.Percentage, 100)
						require.Equal(t, LevelFor(score.Percentage), score.Level)
					}
				}
			}
		}
	}
}

func TestScoreRisk_WindMonotonic(t *testing.T) {
	trend := HistoricalTrend{DryDays: 12, HighWindDays: 6}
	fires := FireSummary{ActiveCount: 2, NearestIncident: &NearestIncident{DistanceKm: 20}}

	prev := -1
	for wind := 0.0; wind <= 60; wind += 0.5 {
		score := ScoreRisk(conditions(26, 35, wind, 0.15), trend, fires)
		require.GreaterOrEqual(t, score.Percentage, prev, "wind %.1f", wind)
		prev = score.Percentage
	}

	for _, boundary := range []float64{10, 20, 30} {
		below := ScoreRisk(conditions(26, 35, boundary, 0.15), trend, fires)
		above := ScoreRisk(conditions(26, 35, boundary+0.1, 0.15), trend, fires)
		assert.Greater(t, above.Percentage, below.Percentage, "crossing %v km/h", boundary)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		pct  int
		want RiskLevel
	}{
		{0, RiskLow},
		{33, RiskLow},
		{34, RiskMedium},
		{66, RiskMedium},
		{67, RiskHigh},
		{100, RiskHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.pct), "pct=%d", tt.pct)
	}
}

func TestParseRiskLevel(t *testing.T) {
	for _, s := range []string{"Low", "Medium", "High"} {
		lvl, err := ParseRiskLevel(s)
		require.NoError(t, err)
		assert.Equal(t, RiskLevel(s), lvl)
	}
	for _, s := range []string{"", "low", "Moderate", "Extreme"} {
		_, err := ParseRiskLevel(s)
		assert.ErrorIs(t, err, ErrValidation, s)
	}
}

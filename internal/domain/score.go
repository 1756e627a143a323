package domain

import "fmt"

// RiskLevel is the coarse classification derived from a risk percentage.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Level thresholds: percentages at or above these map to the level.
const (
	mediumThreshold = 34
	highThreshold   = 67
)

// ParseRiskLevel accepts exactly one of the three level names.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskLevel(s), nil
	default:
		return "", fmt.Errorf("%w: unknown risk level %q", ErrValidation, s)
	}
}

// LevelFor maps a percentage to its level.
func LevelFor(percentage int) RiskLevel {
	switch {
	case percentage >= highThreshold:
		return RiskHigh
	case percentage >= mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// tier awards points when a reading passes a bound. Tables list tiers from
// the highest award down; the first match wins.
type tier struct {
	bound  float64
	points int
}

var (
	temperatureTiers  = []tier{{30, 10}, {25, 7}, {20, 5}, {15, 3}}        // °C, above
	humidityTiers     = []tier{{30, 15}, {40, 10}, {50, 5}}                // %, below
	windSpeedTiers    = []tier{{30, 15}, {20, 10}, {10, 5}}                // km/h, above
	soilMoistureTiers = []tier{{0.1, 10}, {0.2, 7}, {0.3, 3}}              // m³/m³, below
	distanceTiers     = []tier{{10, 10}, {25, 7}, {FireSearchRadiusKm, 3}} // km, below
	activeCountTiers  = []tier{{5, 10}, {3, 7}, {1, 3}}                    // above
	burnedAcresTiers  = []tier{{1000, 5}, {500, 3}, {100, 1}}              // above
	dryDayTiers       = []tier{{20, 10}, {15, 7}, {10, 3}}                 // above
	highWindDayTiers  = []tier{{15, 10}, {10, 7}, {5, 3}}                  // above
	lowHumidDayTiers  = []tier{{10, 5}, {7, 3}, {3, 1}}                    // above
)

func above(v float64, tiers []tier) int {
	for _, t := range tiers {
		if v > t.bound {
			return t.points
		}
	}
	return 0
}

func below(v float64, tiers []tier) int {
	for _, t := range tiers {
		if v < t.bound {
			return t.points
		}
	}
	return 0
}

func aboveReading(v *float64, tiers []tier) int {
	if v == nil {
		return 0
	}
	return above(*v, tiers)
}

func belowReading(v *float64, tiers []tier) int {
	if v == nil {
		return 0
	}
	return below(*v, tiers)
}

// ScoreBreakdown records the points awarded per group.
type ScoreBreakdown struct {
	Current int `json:"current"`
	Fire    int `json:"fire"`
	Trend   int `json:"trend"`
}

// RiskScore is the scorer's output.
type RiskScore struct {
	Percentage int            `json:"risk_percentage"`
	Level      RiskLevel      `json:"risk_level"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
}

// ScoreRisk combines current conditions, fire activity and the historical
// trend into a 0–100 percentage and its level.
func ScoreRisk(current Conditions, trend HistoricalTrend, fires FireSummary) RiskScore {
	b := ScoreBreakdown{
		Current: aboveReading(current.Temperature, temperatureTiers) +
			belowReading(current.Humidity, humidityTiers) +
			aboveReading(current.WindSpeed, windSpeedTiers) +
			belowReading(current.SoilMoisture, soilMoistureTiers),
		Fire: above(float64(fires.ActiveCount), activeCountTiers) +
			above(fires.TotalBurnedAcres, burnedAcresTiers),
		Trend: above(float64(trend.DryDays), dryDayTiers) +
			above(float64(trend.HighWindDays), highWindDayTiers) +
			above(float64(trend.LowHumidityDays), lowHumidDayTiers),
	}
	if fires.NearestIncident != nil {
		b.Fire += below(fires.NearestIncident.DistanceKm, distanceTiers)
	}

	pct := min(max(b.Current+b.Fire+b.Trend, 0), 100)
	return RiskScore{
		Percentage: pct,
		Level:      LevelFor(pct),
		Breakdown:  b,
	}
}

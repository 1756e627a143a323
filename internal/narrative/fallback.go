package narrative

import (
	"context"
	"fmt"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
)

// phraseBank is the fixed text for one risk level.
type phraseBank struct {
	factor          string
	concerns        [2]string
	recommendations [3]string
}

var banks = map[domain.RiskLevel]phraseBank{
	domain.RiskHigh: {
		factor: "Hot, dry and windy conditions favor ignition",
		concerns: [2]string{
			"Potential for rapid fire spread",
			"Embers may start spot fires ahead of a fire front",
		},
		recommendations: [3]string{
			"Prepare an evacuation plan and know your routes",
			"Keep a go-bag with essentials and documents ready",
			"Follow alerts from local fire authorities closely",
		},
	},
	domain.RiskMedium: {
		factor: "Conditions support fire growth if an ignition occurs",
		concerns: [2]string{
			"Vegetation is dry enough to carry fire",
			"Afternoon winds could push small fires quickly",
		},
		recommendations: [3]string{
			"Review your emergency preparedness plan",
			"Clear dry brush and debris around structures",
			"Avoid outdoor burning and spark-producing equipment",
		},
	},
	domain.RiskLow: {
		factor: "Current weather limits fire spread",
		concerns: [2]string{
			"Localized fires remain possible in dry vegetation",
			"Conditions can change quickly with heat or wind",
		},
		recommendations: [3]string{
			"Maintain awareness of fire safety practices",
			"Dispose of cigarettes and campfire ash properly",
			"Check local restrictions before any outdoor burning",
		},
	},
}

// Fallback writes the narrative from fixed phrase banks. Its output depends
// only on the risk level, the fire summary and the trend.
type Fallback struct{}

// Narrate never returns an error.
func (Fallback) Narrate(_ context.Context, in Input) (domain.Narrative, error) {
	bank, ok := banks[in.Score.Level]
	if !ok {
		bank = banks[domain.LevelFor(in.Score.Percentage)]
	}

	concerns := []string{bank.concerns[0], bank.concerns[1]}
	if in.Fires.NearestIncident != nil {
		concerns = append(concerns, nearestConcern(*in.Fires.NearestIncident))
	}

	return domain.Narrative{
		KeyRiskFactors: []string{
			fireFactor(in.Fires),
			trendFactor(in.Trend),
			bank.factor,
		},
		CurrentConcerns:       concerns,
		SafetyRecommendations: bank.recommendations[:],
	}, nil
}

func fireFactor(f domain.FireSummary) string {
	switch f.ActiveCount {
	case 0:
		return "No active fires in immediate area"
	case 1:
		return fmt.Sprintf("1 active fire within %.0f km", domain.FireSearchRadiusKm)
	default:
		return fmt.Sprintf("%d active fires within %.0f km", f.ActiveCount, domain.FireSearchRadiusKm)
	}
}

func trendFactor(t domain.HistoricalTrend) string {
	if t.Days == 0 {
		return "Recent weather history is unavailable"
	}
	return fmt.Sprintf("%d of the last %d days were dry, %d had high winds and %d had low humidity",
		t.DryDays, t.Days, t.HighWindDays, t.LowHumidityDays)
}

func nearestConcern(n domain.NearestIncident) string {
	containment := "containment unknown"
	if n.ContainmentPercent != nil {
		containment = fmt.Sprintf("%.0f%% contained", *n.ContainmentPercent)
	}
	name := n.Name
	if name == "" {
		name = "An unnamed fire"
	}
	return fmt.Sprintf("%s is burning %.1f km away (%.0f acres, %s)",
		name, n.DistanceKm, n.SizeAcres, containment)
}

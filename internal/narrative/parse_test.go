package narrative

import (
	"testing"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{
  "cityName": "Los Angeles",
  "riskLevel": "High",
  "riskPercentage": "90%",
  "keyRiskFactors": ["Humidity at 18%", "Sustained winds of 35 km/h"],
  "currentConcerns": ["Canyon Fire 5 km away", "Rapid spread in dry brush"],
  "safetyRecommendations": ["Prepare an evacuation plan", "Clear defensible space", "Monitor alerts"]
}`

func TestParseNarrative_Valid(t *testing.T) {
	n, err := ParseNarrative(validReply, domain.RiskHigh)
	require.NoError(t, err)
	assert.Equal(t, []string{"Humidity at 18%", "Sustained winds of 35 km/h"}, n.KeyRiskFactors)
	assert.Len(t, n.SafetyRecommendations, 3)
}

func TestParseNarrative_Tolerated(t *testing.T) {
	tests := map[string]string{
		"code fence":        "```json\n" + validReply + "\n```",
		"bare fence":        "```\n" + validReply + "```",
		"surrounding prose": "Here is the assessment:\n" + validReply + "\nStay safe.",
		"numeric percent":   `{"riskLevel":"High","riskPercentage":90,"keyRiskFactors":["a","b"],"currentConcerns":["c","d"],"safetyRecommendations":["e","f"]}`,
		"no percent":        `{"riskLevel":"High","keyRiskFactors":["a","b"],"currentConcerns":["c","d"],"safetyRecommendations":["e","f"]}`,
		"wrapped":           `{"cityName":"LA","fireRiskAssessment":{"riskLevel":"High","riskPercentage":"90%","keyRiskFactors":["a","b"],"currentConcerns":["c","d"],"safetyRecommendations":["e","f"]}}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseNarrative(raw, domain.RiskHigh)
			require.NoError(t, err)
		})
	}
}

func TestParseNarrative_Malformed(t *testing.T) {
	tests := map[string]string{
		"not json":          "Fire Risk Assessment for Los Angeles\nRisk Level: High",
		"truncated":         `{"riskLevel":"High","keyRiskFactors":["a",`,
		"missing level":     `{"keyRiskFactors":["a","b"],"currentConcerns":["c","d"],"safetyRecommendations":["e","f"]}`,
		"unknown level":     `{"riskLevel":"Extreme","keyRiskFactors":["a","b"],"currentConcerns":["c","d"],"safetyRecommendations":["e","f"]}`,
		"contradicts score": `{"riskLevel":"Low","keyRiskFactors":["a","b"],"currentConcerns":["c","d"],"safetyRecommendations":["e","f"]}`,
		"missing list":      `{"riskLevel":"High","keyRiskFactors":["a","b"],"currentConcerns":["c","d"]}`,
		"one entry":         `{"riskLevel":"High","keyRiskFactors":["a"],"currentConcerns":["c","d"],"safetyRecommendations":["e","f"]}`,
		"four entries":      `{"riskLevel":"High","keyRiskFactors":["a","b"],"currentConcerns":["c","d","x","y"],"safetyRecommendations":["e","f"]}`,
		"blank entry":       `{"riskLevel":"High","keyRiskFactors":["a"," "],"currentConcerns":["c","d"],"safetyRecommendations":["e","f"]}`,
		"wrong list type":   `{"riskLevel":"High","keyRiskFactors":"a, b","currentConcerns":["c","d"],"safetyRecommendations":["e","f"]}`,
		"percent too high":  `{"riskLevel":"High","riskPercentage":"140%","keyRiskFactors":["a","b"],"currentConcerns":["c","d"],"safetyRecommendations":["e","f"]}`,
		"percent garbage":   `{"riskLevel":"High","riskPercentage":"very","keyRiskFactors":["a","b"],"currentConcerns":["c","d"],"safetyRecommendations":["e","f"]}`,
		"empty":             "",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseNarrative(raw, domain.RiskHigh)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}

func TestParsePercentage(t *testing.T) {
	for raw, want := range map[string]int{`72`: 72, `72.9`: 72, `"72"`: 72, `" 72 %"`: 72, `0`: 0, `"100%"`: 100} {
		got, err := parsePercentage([]byte(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

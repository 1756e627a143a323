package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// List bounds for every narrative list.
const (
	MinNarrativeItems = 2
	MaxNarrativeItems = 3
)

// Narrative is the prose half of an assessment.
type Narrative struct {
	KeyRiskFactors        []string `json:"keyRiskFactors"`
	CurrentConcerns       []string `json:"currentConcerns"`
	SafetyRecommendations []string `json:"safetyRecommendations"`
}

// Validate checks that every list holds 2–3 non-blank entries.
func (n Narrative) Validate() error {
	lists := []struct {
		name  string
		items []string
	}{
		{"keyRiskFactors", n.KeyRiskFactors},
		{"currentConcerns", n.CurrentConcerns},
		{"safetyRecommendations", n.SafetyRecommendations},
	}
	for _, l := range lists {
		if len(l.items) < MinNarrativeItems || len(l.items) > MaxNarrativeItems {
			return fmt.Errorf("%w: %s has %d entries, want %d-%d",
				ErrValidation, l.name, len(l.items), MinNarrativeItems, MaxNarrativeItems)
		}
		for i, item := range l.items {
			if strings.TrimSpace(item) == "" {
				return fmt.Errorf("%w: %s[%d] is blank", ErrValidation, l.name, i)
			}
		}
	}
	return nil
}

// RiskAssessment is the result handed back to callers.
type RiskAssessment struct {
	CityName       string    `json:"cityName"`
	RiskLevel      RiskLevel `json:"riskLevel"`
	RiskPercentage int       `json:"riskPercentage"`
	Narrative
}

// NewRiskAssessment echoes the score into an assessment with the given prose.
func NewRiskAssessment(cityName string, score RiskScore, n Narrative) RiskAssessment {
	return RiskAssessment{
		CityName:       cityName,
		RiskLevel:      score.Level,
		RiskPercentage: score.Percentage,
		Narrative:      n,
	}
}

// Validate checks the percentage range, that the level matches the
// percentage, and the narrative list bounds.
func (a RiskAssessment) Validate() error {
	if a.RiskPercentage < 0 || a.RiskPercentage > 100 {
		return fmt.Errorf("%w: risk percentage %d out of range", ErrValidation, a.RiskPercentage)
	}
	if _, err := ParseRiskLevel(string(a.RiskLevel)); err != nil {
		return err
	}
	if want := LevelFor(a.RiskPercentage); a.RiskLevel != want {
		return fmt.Errorf("%w: risk level %s does not match %d%% (want %s)",
			ErrValidation, a.RiskLevel, a.RiskPercentage, want)
	}
	return a.Narrative.Validate()
}

// AssessmentResponse is the serialized form returned to API callers.
type AssessmentResponse struct {
	CityName           string             `json:"cityName"`
	FireRiskAssessment FireRiskAssessment `json:"fireRiskAssessment"`
}

// FireRiskAssessment is the body of AssessmentResponse. The percentage is
// rendered as "NN%".
type FireRiskAssessment struct {
	RiskLevel             RiskLevel `json:"riskLevel"`
	RiskPercentage        string    `json:"riskPercentage"`
	KeyRiskFactors        []string  `json:"keyRiskFactors"`
	CurrentConcerns       []string  `json:"currentConcerns"`
	SafetyRecommendations []string  `json:"safetyRecommendations"`
}

// Response converts the assessment to its wire form.
func (a RiskAssessment) Response() AssessmentResponse {
	return AssessmentResponse{
		CityName: a.CityName,
		FireRiskAssessment: FireRiskAssessment{
			RiskLevel:             a.RiskLevel,
			RiskPercentage:        strconv.Itoa(a.RiskPercentage) + "%",
			KeyRiskFactors:        a.KeyRiskFactors,
			CurrentConcerns:       a.CurrentConcerns,
			SafetyRecommendations: a.SafetyRecommendations,
		},
	}
}

package narrative

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
)

// reply is the loosely-typed shape a model may return. Pointers and nil
// slices distinguish missing fields from empty ones.
type reply struct {
	CityName              *string          `json:"cityName"`
	RiskLevel             *string          `json:"riskLevel"`
	RiskPercentage        json.RawMessage  `json:"riskPercentage"`
	KeyRiskFactors        []string         `json:"keyRiskFactors"`
	CurrentConcerns       []string         `json:"currentConcerns"`
	SafetyRecommendations []string         `json:"safetyRecommendations"`
	FireRiskAssessment    *json.RawMessage `json:"fireRiskAssessment"`
}

// ParseNarrative validates raw model output against the assessment schema.
// The reply must state want as its risk level; its percentage, if any, is
// checked for range and otherwise ignored. Markdown code fences and text
// around the JSON object are tolerated. Every failure wraps
// domain.ErrMalformedResponse.
func ParseNarrative(raw string, want domain.RiskLevel) (domain.Narrative, error) {
	body, err := extractObject(raw)
	if err != nil {
		return domain.Narrative{}, err
	}

	r, err := decodeReply(body)
	if err != nil {
		return domain.Narrative{}, err
	}
	// Accept the API response shape: {"cityName": ..., "fireRiskAssessment": {...}}.
	if r.FireRiskAssessment != nil {
		inner, err := decodeReply(*r.FireRiskAssessment)
		if err != nil {
			return domain.Narrative{}, err
		}
		r = inner
	}

	if r.RiskLevel == nil {
		return domain.Narrative{}, malformed("riskLevel is missing")
	}
	level, err := domain.ParseRiskLevel(strings.TrimSpace(*r.RiskLevel))
	if err != nil {
		return domain.Narrative{}, malformed(err.Error())
	}
	if level != want {
		return domain.Narrative{}, malformed(fmt.Sprintf("riskLevel %s contradicts scored level %s", level, want))
	}
	if len(r.RiskPercentage) > 0 {
		if _, err := parsePercentage(r.RiskPercentage); err != nil {
			return domain.Narrative{}, malformed(err.Error())
		}
	}

	n := domain.Narrative{
		KeyRiskFactors:        trimAll(r.KeyRiskFactors),
		CurrentConcerns:       trimAll(r.CurrentConcerns),
		SafetyRecommendations: trimAll(r.SafetyRecommendations),
	}
	if err := n.Validate(); err != nil {
		return domain.Narrative{}, malformed(err.Error())
	}
	return n, nil
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedResponse, reason)
}

func extractObject(raw string) ([]byte, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, malformed("no JSON object in reply")
	}
	return []byte(s[start : end+1]), nil
}

func decodeReply(body []byte) (reply, error) {
	var r reply
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&r); err != nil {
		return reply{}, malformed("decode reply: " + err.Error())
	}
	return r, nil
}

// parsePercentage accepts 72, 72.0, "72" and "72%".
func parsePercentage(raw json.RawMessage) (int, error) {
	var num float64
	if err := json.Unmarshal(raw, &num); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, errors.New("riskPercentage is neither a number nor a string")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		num, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("riskPercentage %q is not a number", s)
		}
	}
	if num < 0 || num > 100 {
		return 0, fmt.Errorf("riskPercentage %v out of range", num)
	}
	return int(num), nil
}

func trimAll(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

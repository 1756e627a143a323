package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseLocationQuery decodes a stream request. JSON objects are read as
// LocationQuery; anything else is taken as a bare location string. The
// message key stands in for a missing request ID.
func ParseLocationQuery(raw RawEvent) (LocationQuery, error) {
	body := strings.TrimSpace(string(raw.Value))

	var q LocationQuery
	if strings.HasPrefix(body, "{") {
		if err := json.Unmarshal([]byte(body), &q); err != nil {
			return LocationQuery{}, fmt.Errorf("parse location query: %w", err)
		}
	} else {
		q.Location = body
	}

	q.Location = strings.TrimSpace(q.Location)
	if q.Location == "" {
		return LocationQuery{}, fmt.Errorf("%w: location query has no location", ErrValidation)
	}
	if q.RequestID == "" {
		q.RequestID = string(raw.Key)
	}
	return q, nil
}

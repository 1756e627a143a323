package domain

import (
	"context"
	"time"
)

// NarrativeSource records which narrator produced the prose.
type NarrativeSource string

const (
	SourceGenerative NarrativeSource = "generative"
	SourceFallback   NarrativeSource = "fallback"
)

// Report is everything a single assessment produced. It is what the stream
// publishes and the Postgres sink stores; API callers get Assessment.Response().
type Report struct {
	ID              string          `json:"id"`
	RequestID       string          `json:"request_id,omitempty"`
	Query           string          `json:"query"`
	Place           Place           `json:"place"`
	Conditions      Conditions      `json:"conditions"`
	Trend           HistoricalTrend `json:"trend"`
	Fires           FireSummary     `json:"fires"`
	Score           RiskScore       `json:"score"`
	Assessment      RiskAssessment  `json:"assessment"`
	NarrativeSource NarrativeSource `json:"narrative_source"`
	Degraded        bool            `json:"degraded"`
	AssessedAt      time.Time       `json:"assessed_at"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// LocationQuery is the JSON payload of a stream request.
type LocationQuery struct {
	RequestID string `json:"request_id,omitempty"`
	Location  string `json:"location"`
}

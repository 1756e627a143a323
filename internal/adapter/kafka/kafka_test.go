package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("req-1"),
		Value:     []byte(`{"location":"Los Angeles"}`),
		Topic:     "fire-risk-requests",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("dashboard")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("req-1"), raw.Key)
	assert.JSONEq(t, `{"location":"Los Angeles"}`, string(raw.Value))
	assert.Equal(t, "fire-risk-requests", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "dashboard", raw.Headers["source"])
	assert.Nil(t, raw.Commit, "commit is attached by the reader")
}

func TestMapMessageToRawEvent_NoHeaders(t *testing.T) {
	raw := mapMessageToRawEvent(kafkago.Message{Value: []byte("Paradise, CA")})
	assert.NotNil(t, raw.Headers)
	assert.Empty(t, raw.Headers)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 7, 14, 15, 10, 0, 0, time.UTC)
	report := domain.Report{
		ID:    "0f8e0c1a-5a57-4d5c-9d0b-7a4d1f0f8e11",
		Query: "Los Angeles",
		Place: domain.Place{Name: "Los Angeles", Coordinate: domain.Coordinate{Latitude: 34.05, Longitude: -118.24}},
		Score: domain.RiskScore{Percentage: 92, Level: domain.RiskHigh},
		Assessment: domain.RiskAssessment{
			CityName:       "Los Angeles",
			RiskLevel:      domain.RiskHigh,
			RiskPercentage: 92,
		},
		NarrativeSource: domain.SourceFallback,
		AssessedAt:      now,
	}

	msg, err := serializeToMessage(report)
	require.NoError(t, err)

	assert.Equal(t, []byte(report.ID), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "risk_level", msg.Headers[0].Key)
	assert.Equal(t, []byte("High"), msg.Headers[0].Value)
	assert.Equal(t, "assessed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.Report
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, report.ID, decoded.ID)
	assert.Equal(t, 92, decoded.Score.Percentage)
	assert.Equal(t, domain.SourceFallback, decoded.NarrativeSource)
	assert.True(t, now.Equal(decoded.AssessedAt))
}

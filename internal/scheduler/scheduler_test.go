package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAssessor struct {
	mu      sync.Mutex
	failing map[string]bool
	queries []string
}

func (s *stubAssessor) Assess(_ context.Context, query string) (domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.failing[query] {
		return domain.Report{}, domain.ErrNotFound
	}
	return domain.Report{ID: "report-" + query, Query: query}, nil
}

func (s *stubAssessor) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

type stubLoader struct {
	mu      sync.Mutex
	batches [][]domain.Report
	err     error
}

func (s *stubLoader) LoadBatch(_ context.Context, reports []domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, reports)
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InvalidSchedule(t *testing.T) {
	_, err := New("every tuesday", nil, &stubAssessor{}, &stubLoader{}, discardLogger(), observability.NewMetricsForTesting())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid watch schedule")
}

func TestNew_AcceptsDescriptorsAndFields(t *testing.T) {
	for _, schedule := range []string{"@hourly", "@daily", "*/15 * * * *", "@every 30m"} {
		_, err := New(schedule, nil, &stubAssessor{}, &stubLoader{}, discardLogger(), observability.NewMetricsForTesting())
		assert.NoError(t, err, schedule)
	}
}

func TestRunOnce_LoadsSuccessfulReports(t *testing.T) {
	assessor := &stubAssessor{failing: map[string]bool{"Atlantis": true}}
	loader := &stubLoader{}
	metrics := observability.NewMetricsForTesting()
	s, err := New("@hourly", []string{"Los Angeles", "Atlantis", "Paradise, CA"}, assessor, loader, discardLogger(), metrics)
	require.NoError(t, err)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, []string{"Los Angeles", "Atlantis", "Paradise, CA"}, assessor.queries)
	require.Len(t, loader.batches, 1)
	require.Len(t, loader.batches[0], 2)
	assert.Equal(t, "report-Los Angeles", loader.batches[0][0].ID)
	assert.Equal(t, "report-Paradise, CA", loader.batches[0][1].ID)

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SchedulerRuns.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SchedulerRuns.WithLabelValues("error")), 0)
}

func TestRunOnce_AllFailedSkipsLoad(t *testing.T) {
	assessor := &stubAssessor{failing: map[string]bool{"Atlantis": true}}
	loader := &stubLoader{}
	s, err := New("@hourly", []string{"Atlantis"}, assessor, loader, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, loader.batches)
}

func TestRunOnce_LoadError(t *testing.T) {
	loader := &stubLoader{err: errors.New("sink down")}
	s, err := New("@hourly", []string{"Los Angeles"}, &stubAssessor{}, loader, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	_, err = s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink down")
}

func TestRunOnce_CancelledContext(t *testing.T) {
	assessor := &stubAssessor{}
	s, err := New("@hourly", []string{"Los Angeles", "Paradise, CA"}, assessor, &stubLoader{}, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.RunOnce(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, assessor.count())
}

func TestStartStop_RunsOnSchedule(t *testing.T) {
	assessor := &stubAssessor{}
	s, err := New("@every 1s", []string{"Los Angeles"}, assessor, &stubLoader{}, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return assessor.count() > 0 }, 5*time.Second, 50*time.Millisecond)

	select {
	case <-s.Stop().Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

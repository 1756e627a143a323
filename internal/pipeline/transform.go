package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
)

// ReportAssessor produces a report for a free-text location.
type ReportAssessor interface {
	Assess(ctx context.Context, query string) (domain.Report, error)
}

// AssessmentTransformer implements Transformer by decoding a location query
// from the raw event and assessing it.
type AssessmentTransformer struct {
	assessor ReportAssessor
	logger   *slog.Logger
}

// NewTransformer creates an AssessmentTransformer.
func NewTransformer(assessor ReportAssessor, logger *slog.Logger) *AssessmentTransformer {
	return &AssessmentTransformer{
		assessor: assessor,
		logger:   logger,
	}
}

func (t *AssessmentTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Report, error) {
	q, err := domain.ParseLocationQuery(raw)
	if err != nil {
		return domain.Report{}, err
	}

	report, err := t.assessor.Assess(ctx, q.Location)
	if err != nil {
		return domain.Report{}, err
	}
	report.RequestID = q.RequestID
	return report, nil
}

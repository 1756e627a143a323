package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns a raw request event into an assessment report.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.Report, error)
}

// BatchLoader writes multiple reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.Report) error
}

// MultiLoader writes each batch to every loader in order and stops at the
// first failure.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, reports []domain.Report) error {
	for _, l := range m {
		if err := l.LoadBatch(ctx, reports); err != nil {
			return err
		}
	}
	return nil
}

// Pipeline orchestrates the request stream: extract location queries,
// assess each one, load the reports.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has completed a fetch from the
// source, or an error describing why the stream is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not reached the source topic yet")
	}
	return nil
}

// Run executes the batch assessment loop until the context is cancelled.
// Broker and sink failures back off exponentially; assessments themselves are
// never retried.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	b := &backoff{next: minBackoff}
	for ctx.Err() == nil {
		if !p.step(ctx, b) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

const (
	minBackoff = 200 * time.Millisecond
	maxBackoff = 5 * time.Second
)

// backoff is owned by the Run goroutine.
type backoff struct {
	next time.Duration
}

func (b *backoff) reset() { b.next = minBackoff }

// wait sleeps for the current delay and doubles it up to maxBackoff. It
// returns false when ctx is done first.
func (b *backoff) wait(ctx context.Context) bool {
	if !retry.SleepWithContext(ctx, b.next) {
		return false
	}
	b.next = retry.NextBackoff(b.next, maxBackoff)
	return true
}

// step runs one extract, assess, load cycle. It returns false when the loop
// should end. Offsets are committed only after the batch's reports are
// loaded, so a commit never acknowledges a report that was not written.
func (p *Pipeline) step(ctx context.Context, b *backoff) bool {
	start := time.Now()

	events, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return b.wait(ctx)
	}

	p.ready.Store(true)
	b.reset()
	if len(events) == 0 {
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(events)))
	p.metrics.BatchSize.Observe(float64(len(events)))

	reports := p.assessAll(ctx, events)
	if len(reports) > 0 {
		if !p.load(ctx, reports, b) {
			return false
		}
		p.metrics.MessagesProduced.Add(float64(len(reports)))
	}

	for _, ev := range events {
		p.commit(ctx, ev)
	}
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	return true
}

// load writes reports, retrying the same batch with backoff until it succeeds.
// It returns false when ctx ends first; the batch stays uncommitted and is
// redelivered.
func (p *Pipeline) load(ctx context.Context, reports []domain.Report, b *backoff) bool {
	for {
		err := p.loader.LoadBatch(ctx, reports)
		if err == nil {
			b.reset()
			return true
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(reports))
		if ctx.Err() != nil || !b.wait(ctx) {
			return false
		}
	}
}

// assessAll transforms each event. A failed assessment is logged and counted
// and its event is committed with the rest of the batch, so it is not
// redelivered.
func (p *Pipeline) assessAll(ctx context.Context, events []domain.RawEvent) []domain.Report {
	reports := make([]domain.Report, 0, len(events))
	for _, ev := range events {
		report, err := p.transformer.Transform(ctx, ev)
		if err != nil {
			p.logger.Error("assessment failed, skipping message",
				"error", err,
				"key", string(ev.Key),
				"partition", ev.Partition,
				"offset", ev.Offset,
			)
			p.metrics.TransformErrors.Inc()
			continue
		}
		reports = append(reports, report)
	}
	return reports
}

// commit acknowledges ev when the source supports it.
func (p *Pipeline) commit(ctx context.Context, ev domain.RawEvent) {
	if ev.Commit == nil {
		return
	}
	if err := ev.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"partition", ev.Partition, "offset", ev.Offset)
	}
}

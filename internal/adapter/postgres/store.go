// Package postgres persists assessment reports to PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS fire_risk_assessments (
	id               TEXT PRIMARY KEY,
	query            TEXT NOT NULL,
	city_name        TEXT NOT NULL,
	latitude         DOUBLE PRECISION NOT NULL,
	longitude        DOUBLE PRECISION NOT NULL,
	risk_percentage  INTEGER NOT NULL,
	risk_level       TEXT NOT NULL,
	narrative_source TEXT NOT NULL,
	degraded         BOOLEAN NOT NULL DEFAULT FALSE,
	assessed_at      TIMESTAMPTZ NOT NULL,
	report           JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS fire_risk_assessments_city_assessed_idx
	ON fire_risk_assessments (city_name, assessed_at DESC);
`

const insertSQL = `
INSERT INTO fire_risk_assessments (
	id, query, city_name, latitude, longitude, risk_percentage, risk_level,
	narrative_source, degraded, assessed_at, report
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO NOTHING`

// DB is the subset of pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Ping(ctx context.Context) error
}

// Store writes reports to the fire_risk_assessments table.
// It implements pipeline.BatchLoader.
type Store struct {
	db     DB
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore wraps an existing connection.
func NewStore(db DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Open connects to databaseURL, verifies the connection and ensures the
// schema exists.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	s := &Store{db: pool, pool: pool, logger: logger}
	if err := s.CheckReadiness(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the reports table and its index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

// LoadBatch inserts reports in one round trip. Reports already stored under
// the same ID are left untouched.
func (s *Store) LoadBatch(ctx context.Context, reports []domain.Report) error {
	if len(reports) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range reports {
		args, err := insertArgs(reports[i])
		if err != nil {
			return err
		}
		batch.Queue(insertSQL, args...)
	}

	results := s.db.SendBatch(ctx, batch)
	var inserted int64
	for range reports {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return fmt.Errorf("postgres: insert report: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("postgres: close batch: %w", err)
	}

	if skipped := int64(len(reports)) - inserted; skipped > 0 {
		s.logger.Debug("skipped duplicate reports", "count", skipped)
	}
	return nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// Close releases the pool when the store owns one.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func insertArgs(r domain.Report) ([]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("postgres: serialize report %s: %w", r.ID, err)
	}
	return []any{
		r.ID,
		r.Query,
		r.Assessment.CityName,
		r.Place.Coordinate.Latitude,
		r.Place.Coordinate.Longitude,
		r.Score.Percentage,
		string(r.Score.Level),
		string(r.NarrativeSource),
		r.Degraded,
		r.AssessedAt,
		data,
	}, nil
}

// Package persistence provides the optional postgres audit sink for
// validation verdicts. Strategy data itself is never persisted here; that
// is the Hall-of-Fame collaborator's job. This store keeps the audit
// trail of which checks ran and what they decided.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// VerdictRecord is one stored validator verdict.
type VerdictRecord struct {
	ID         int64     `json:"id" db:"id"`
	RunID      string    `json:"run_id" db:"run_id"`
	StrategyID string    `json:"strategy_id" db:"strategy_id"`
	Validator  string    `json:"validator_name" db:"validator_name"`
	Passed     bool      `json:"passed" db:"passed"`
	Statistic  float64   `json:"statistic_value" db:"statistic_value"`
	Threshold  float64   `json:"threshold_value" db:"threshold_value"`
	NPeriods   int       `json:"n_periods" db:"n_periods"`
	Diagnostic string    `json:"diagnostic_message" db:"diagnostic_message"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// VerdictStore is the audit repository interface.
type VerdictStore interface {
	Insert(ctx context.Context, record VerdictRecord) (int64, error)
	ListByRun(ctx context.Context, runID string) ([]VerdictRecord, error)
}

// verdictStore implements VerdictStore for PostgreSQL.
type verdictStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewVerdictStore creates a PostgreSQL-backed verdict store.
func NewVerdictStore(db *sqlx.DB, timeout time.Duration) VerdictStore {
	return &verdictStore{db: db, timeout: timeout}
}

// Schema is the verdicts table DDL, applied by the operator or migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS validation_verdicts (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	strategy_id TEXT NOT NULL,
	validator_name TEXT NOT NULL,
	passed BOOLEAN NOT NULL,
	statistic_value DOUBLE PRECISION NOT NULL,
	threshold_value DOUBLE PRECISION NOT NULL,
	n_periods INTEGER NOT NULL,
	diagnostic_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_verdicts_run ON validation_verdicts (run_id);
CREATE INDEX IF NOT EXISTS idx_verdicts_strategy ON validation_verdicts (strategy_id);
`

func (s *verdictStore) Insert(ctx context.Context, record VerdictRecord) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		INSERT INTO validation_verdicts
		(run_id, strategy_id, validator_name, passed, statistic_value,
		 threshold_value, n_periods, diagnostic_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id int64
	err := s.db.QueryRowxContext(ctx, query,
		record.RunID, record.StrategyID, record.Validator, record.Passed,
		record.Statistic, record.Threshold, record.NPeriods, record.Diagnostic,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert verdict: %w", err)
	}
	return id, nil
}

func (s *verdictStore) ListByRun(ctx context.Context, runID string) ([]VerdictRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT id, run_id, strategy_id, validator_name, passed,
		       statistic_value, threshold_value, n_periods,
		       diagnostic_message, created_at
		FROM validation_verdicts
		WHERE run_id = $1
		ORDER BY id`

	var records []VerdictRecord
	if err := s.db.SelectContext(ctx, &records, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list verdicts for run %s: %w", runID, err)
	}
	return records, nil
}

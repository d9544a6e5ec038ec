package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (VerdictStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewVerdictStore(sqlx.NewDb(db, "postgres"), 5*time.Second), mock
}

func TestVerdictStoreInsert(t *testing.T) {
	store, mock := newMockStore(t)

	record := VerdictRecord{
		RunID:      "run-1",
		StrategyID: "strat-1",
		Validator:  "walk_forward",
		Passed:     true,
		Statistic:  1.23,
		Threshold:  0.5,
		NPeriods:   945,
		Diagnostic: "3 windows",
	}

	mock.ExpectQuery("INSERT INTO validation_verdicts").
		WithArgs(record.RunID, record.StrategyID, record.Validator, record.Passed,
			record.Statistic, record.Threshold, record.NPeriods, record.Diagnostic).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := store.Insert(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerdictStoreInsertError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO validation_verdicts").
		WillReturnError(errors.New("connection reset"))

	_, err := store.Insert(context.Background(), VerdictRecord{RunID: "run-1"})
	assert.Error(t, err)
}

func TestVerdictStoreListByRun(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "run_id", "strategy_id", "validator_name", "passed",
		"statistic_value", "threshold_value", "n_periods", "diagnostic_message", "created_at",
	}).
		AddRow(int64(1), "run-1", "strat-1", "walk_forward", true, 1.2, 0.5, 945, "", now).
		AddRow(int64(2), "run-1", "strat-1", "bootstrap", false, 0.3, 0.5, 945, "CI too wide", now)

	mock.ExpectQuery("SELECT (.+) FROM validation_verdicts").
		WithArgs("run-1").
		WillReturnRows(rows)

	records, err := store.ListByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "walk_forward", records[0].Validator)
	assert.False(t, records[1].Passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

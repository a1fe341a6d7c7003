package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lib/pq"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// MOCK DB ADAPTER
// ============================================================

type pgxMockAdapter struct {
	mock pgxmock.PgxPoolIface
}

func (a *pgxMockAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.mock.Exec(ctx, sql, args...)
}

func (a *pgxMockAdapter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return a.mock.Query(ctx, sql, args...)
}

func (a *pgxMockAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return a.mock.QueryRow(ctx, sql, args...)
}

func (a *pgxMockAdapter) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return a.mock.BeginTx(ctx, txOptions)
}

func (a *pgxMockAdapter) Close() {
	a.mock.Close()
}

func (a *pgxMockAdapter) Ping(ctx context.Context) error {
	return a.mock.Ping(ctx)
}

// ============================================================
// HELPER FUNCTIONS
// ============================================================

func setupMockDB(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRunRepository) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	repo := NewPostgresRunRepository(&pgxMockAdapter{mock: mock},
		WithIDGenerator(func() string { return "run-1" }))

	return mock, repo
}

func createTagsArray(tags []string) pgtype.Array[string] {
	if tags == nil {
		return pgtype.Array[string]{Valid: false}
	}
	return pgtype.Array[string]{
		Elements: tags,
		Valid:    true,
		Dims:     []pgtype.ArrayDimension{{Length: int32(len(tags)), LowerBound: 1}},
	}
}

func ptr(v float64) *float64 { return &v }

var runColumns = []string{
	"id", "kind", "name", "node_count", "edge_count",
	"trials", "fault_probability", "max_delay", "seed",
	"probability", "confidence_low", "confidence_high",
	"duration_ms", "result", "tags", "created_at",
}

// ============================================================
// CREATE TESTS
// ============================================================

func TestPostgresRunRepository_Create_Estimate(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	now := time.Now()
	run := &Run{
		Kind:             RunKindEstimate,
		Name:             "default-20",
		NodeCount:        20,
		EdgeCount:        28,
		Trials:           100000,
		FaultProbability: 0.05,
		MaxDelay:         0.1,
		Seed:             42,
		Probability:      ptr(0.97),
		ConfidenceLow:    ptr(0.969),
		ConfidenceHigh:   ptr(0.971),
		DurationMs:       812.5,
		Result:           []byte(`{"trials":100000}`),
		Tags:             []string{"nightly"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO runs`).
		WithArgs(
			"run-1", "estimate", "default-20", 20, 28,
			int64(100000), 0.05, 0.1, int64(42),
			run.Probability, run.ConfidenceLow, run.ConfidenceHigh,
			812.5, run.Result, []string{"nightly"},
		).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), run)

	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, now, run.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRunRepository_Create_SweepWithPoints(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	run := &Run{
		ID:     "sweep-7",
		Kind:   RunKindSweep,
		Trials: 1000,
		Seed:   1,
		Result: []byte(`{}`),
		Points: []SweepPoint{
			{Position: 0, Value: 0.01, Probability: 0.99, ConfidenceLow: 0.98, ConfidenceHigh: 0.995},
			{Position: 1, Value: 0.05, Probability: 0.9, ConfidenceLow: 0.88, ConfidenceHigh: 0.92},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO runs`).
		WithArgs(
			"sweep-7", "sweep", "", 0, 0,
			int64(1000), 0.0, 0.0, int64(1),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			0.0, []byte(`{}`), []string{},
		).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO sweep_points`).
		WithArgs("sweep-7", 0, 0.01, 0.99, 0.98, 0.995).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO sweep_points`).
		WithArgs("sweep-7", 1, 0.05, 0.9, 0.88, 0.92).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), run))
	assert.Equal(t, "sweep-7", run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRunRepository_Create_PointFailureRollsBack(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	run := &Run{
		Kind:   RunKindSweep,
		Result: []byte(`{}`),
		Points: []SweepPoint{{Position: 0, Value: 0.1}},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO runs`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO sweep_points`).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), run)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep point 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRunRepository_Create_InvalidKind(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	err := repo.Create(context.Background(), &Run{Kind: "bogus"})

	assert.ErrorIs(t, err, ErrInvalidRun)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============================================================
// GET TESTS
// ============================================================

func TestPostgresRunRepository_GetByID_Estimate(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	now := time.Now()
	rows := pgxmock.NewRows(runColumns).AddRow(
		"run-1", "estimate", "net", 20, 28,
		int64(5000), 0.05, 0.1, int64(42),
		pgtype.Float8{Float64: 0.97, Valid: true},
		pgtype.Float8{Float64: 0.96, Valid: true},
		pgtype.Float8{Float64: 0.98, Valid: true},
		10.5, []byte(`{"trials":5000}`), createTagsArray([]string{"nightly"}), now,
	)

	mock.ExpectQuery(`SELECT .* FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := repo.GetByID(context.Background(), "run-1")

	require.NoError(t, err)
	assert.Equal(t, RunKindEstimate, run.Kind)
	assert.Equal(t, int64(5000), run.Trials)
	require.NotNil(t, run.Probability)
	assert.Equal(t, 0.97, *run.Probability)
	assert.Equal(t, []string{"nightly"}, run.Tags)
	assert.Empty(t, run.Points)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRunRepository_GetByID_SweepLoadsPoints(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	rows := pgxmock.NewRows(runColumns).AddRow(
		"run-2", "sweep", "", 6, 7,
		int64(1000), 0.0, 0.1, int64(1),
		pgtype.Float8{}, pgtype.Float8{}, pgtype.Float8{},
		3.0, []byte(`{}`), createTagsArray(nil), time.Now(),
	)
	mock.ExpectQuery(`SELECT .* FROM runs WHERE id = \$1`).
		WithArgs("run-2").
		WillReturnRows(rows)

	points := pgxmock.NewRows([]string{"position", "value", "probability", "confidence_low", "confidence_high"}).
		AddRow(0, 0.0, 1.0, 0.99, 1.0).
		AddRow(1, 0.5, 0.4, 0.37, 0.43)
	mock.ExpectQuery(`SELECT .* FROM sweep_points`).
		WithArgs("run-2").
		WillReturnRows(points)

	run, err := repo.GetByID(context.Background(), "run-2")

	require.NoError(t, err)
	assert.Nil(t, run.Probability)
	assert.Nil(t, run.Tags)
	require.Len(t, run.Points, 2)
	assert.Equal(t, 0.5, run.Points[1].Value)
	assert.Equal(t, 0.4, run.Points[1].Probability)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRunRepository_GetByID_NotFound(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM runs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	run, err := repo.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.Nil(t, run)
}

func TestPostgresRunRepository_GetByID_DatabaseError(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), "run-1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRunNotFound)
	assert.Contains(t, err.Error(), "failed to get run")
}

// ============================================================
// DELETE TESTS
// ============================================================

func TestPostgresRunRepository_Delete(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), "run-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "run-1"), ErrRunNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============================================================
// LIST TESTS
// ============================================================

func TestPostgresRunRepository_List_Default(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM runs`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(`SELECT id, kind, name, probability, tags, created_at`).
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "kind", "name", "probability", "tags", "created_at"}).
			AddRow("b", "estimate", "second", pgtype.Float8{Float64: 0.5, Valid: true}, createTagsArray([]string{"x"}), now).
			AddRow("a", "sweep", "first", pgtype.Float8{}, createTagsArray(nil), now.Add(-time.Minute)))

	runs, total, err := repo.List(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, 0.5, *runs[0].Probability)
	assert.Equal(t, RunKindSweep, runs[1].Kind)
	assert.Nil(t, runs[1].Probability)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRunRepository_List_WithFilters(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	tags := []string{"nightly", "ring"}
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM runs WHERE kind = \$1 AND tags @> \$2`).
		WithArgs("estimate", pq.Array(tags)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`LIMIT \$3 OFFSET \$4`).
		WithArgs("estimate", pq.Array(tags), 100, 5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "kind", "name", "probability", "tags", "created_at"}))

	runs, total, err := repo.List(context.Background(), &ListOptions{
		Kind:   RunKindEstimate,
		Tags:   tags,
		Limit:  500,
		Offset: 5,
	})

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, runs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRunRepository_List_CountError(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("timeout"))

	_, _, err := repo.List(context.Background(), &ListOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count runs")
}

func TestPostgresRunRepository_List_SelectError(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(`SELECT id, kind`).WillReturnError(errors.New("timeout"))

	_, _, err := repo.List(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list runs")
}

// services/reliability-svc/internal/repository/postgres.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lib/pq"

	"netreliability/pkg/database"
	"netreliability/pkg/telemetry"
)

// PostgresRunRepository PostgreSQL реализация
type PostgresRunRepository struct {
	db    database.DB
	newID func() string
}

// PostgresOption настраивает репозиторий
type PostgresOption func(*PostgresRunRepository)

// WithIDGenerator подменяет генератор идентификаторов
func WithIDGenerator(f func() string) PostgresOption {
	return func(r *PostgresRunRepository) {
		r.newID = f
	}
}

// NewPostgresRunRepository создаёт новый репозиторий
func NewPostgresRunRepository(db database.DB, opts ...PostgresOption) *PostgresRunRepository {
	r := &PostgresRunRepository{db: db, newID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *PostgresRunRepository) Create(ctx context.Context, run *Run) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.Create")
	defer span.End()

	if !run.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRun, run.Kind)
	}
	if run.ID == "" {
		run.ID = r.newID()
	}
	tags := run.Tags
	if tags == nil {
		tags = []string{}
	}

	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO runs (
				id, kind, name, node_count, edge_count,
				trials, fault_probability, max_delay, seed,
				probability, confidence_low, confidence_high,
				duration_ms, result, tags
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING created_at
		`
		err := tx.QueryRow(ctx, query,
			run.ID,
			string(run.Kind),
			run.Name,
			run.NodeCount,
			run.EdgeCount,
			run.Trials,
			run.FaultProbability,
			run.MaxDelay,
			run.Seed,
			run.Probability,
			run.ConfidenceLow,
			run.ConfidenceHigh,
			run.DurationMs,
			run.Result,
			tags,
		).Scan(&run.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for _, p := range run.Points {
			_, err := tx.Exec(ctx, `
				INSERT INTO sweep_points (run_id, position, value, probability, confidence_low, confidence_high)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, run.ID, p.Position, p.Value, p.Probability, p.ConfidenceLow, p.ConfidenceHigh)
			if err != nil {
				return fmt.Errorf("failed to insert sweep point %d: %w", p.Position, err)
			}
		}
		return nil
	})
	if err != nil {
		telemetry.SetError(ctx, err)
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

func (r *PostgresRunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.GetByID")
	defer span.End()

	query := `
		SELECT
			id, kind, name, node_count, edge_count,
			trials, fault_probability, max_delay, seed,
			probability, confidence_low, confidence_high,
			duration_ms, result, tags, created_at
		FROM runs
		WHERE id = $1
	`

	run := &Run{}
	var (
		kind        string
		probability pgtype.Float8
		low         pgtype.Float8
		high        pgtype.Float8
		tags        pgtype.Array[string]
	)

	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&kind,
		&run.Name,
		&run.NodeCount,
		&run.EdgeCount,
		&run.Trials,
		&run.FaultProbability,
		&run.MaxDelay,
		&run.Seed,
		&probability,
		&low,
		&high,
		&run.DurationMs,
		&run.Result,
		&tags,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Kind = RunKind(kind)
	run.Tags = tags.Elements
	run.Probability = floatPtr(probability)
	run.ConfidenceLow = floatPtr(low)
	run.ConfidenceHigh = floatPtr(high)

	if run.Kind == RunKindSweep {
		points, err := r.points(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		run.Points = points
	}

	return run, nil
}

func (r *PostgresRunRepository) points(ctx context.Context, runID string) ([]SweepPoint, error) {
	rows, err := r.db.Query(ctx, `
		SELECT position, value, probability, confidence_low, confidence_high
		FROM sweep_points
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sweep points: %w", err)
	}
	defer rows.Close()

	var points []SweepPoint
	for rows.Next() {
		var p SweepPoint
		if err := rows.Scan(&p.Position, &p.Value, &p.Probability, &p.ConfidenceLow, &p.ConfidenceHigh); err != nil {
			return nil, fmt.Errorf("failed to scan sweep point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sweep points: %w", err)
	}
	return points, nil
}

func (r *PostgresRunRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.Delete")
	defer span.End()

	// точки серии удаляются каскадно
	result, err := r.db.Exec(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *PostgresRunRepository) List(ctx context.Context, opts *ListOptions) ([]*RunSummary, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.List")
	defer span.End()

	o := normalizeListOptions(opts)

	var (
		conds  []string
		args   []any
		argNum = 1
	)
	if o.Kind != "" {
		conds = append(conds, fmt.Sprintf("kind = $%d", argNum))
		args = append(args, string(o.Kind))
		argNum++
	}
	if len(o.Tags) > 0 {
		conds = append(conds, fmt.Sprintf("tags @> $%d", argNum))
		args = append(args, pq.Array(o.Tags))
		argNum++
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM runs %s", where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT id, kind, name, probability, tags, created_at
		FROM runs
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argNum, argNum+1)
	args = append(args, o.Limit, o.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []*RunSummary
	for rows.Next() {
		summary := &RunSummary{}
		var (
			kind        string
			probability pgtype.Float8
			tags        pgtype.Array[string]
		)
		if err := rows.Scan(&summary.ID, &kind, &summary.Name, &probability, &tags, &summary.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan run: %w", err)
		}
		summary.Kind = RunKind(kind)
		summary.Probability = floatPtr(probability)
		summary.Tags = tags.Elements
		results = append(results, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read runs: %w", err)
	}

	return results, total, nil
}

func floatPtr(v pgtype.Float8) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

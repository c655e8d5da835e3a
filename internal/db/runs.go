package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const runColumns = `id, user_id, job_input, job_input_kind, job_url, role_title, company, status,
	initial_score, match_score, iterations, render_degraded, document_ref, error, created_at, completed_at`

// CreateRun inserts a run in the running state.
func (db *DB) CreateRun(ctx context.Context, in RunInput) error {
	if in.ID == uuid.Nil {
		return errors.New("run id is required")
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, user_id, job_input, job_input_kind, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		in.ID, in.UserID, in.JobInput, in.JobInputKind, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun records the outcome of a run.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, out RunOutcome) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs SET
			status = $2, job_url = $3, role_title = $4, company = $5,
			initial_score = $6, match_score = $7, iterations = $8,
			render_degraded = $9, document_ref = $10, error = $11, completed_at = NOW()
		 WHERE id = $1`,
		runID, out.Status, out.JobURL, out.RoleTitle, out.Company,
		out.InitialScore, out.MatchScore, out.Iterations,
		out.RenderDegraded, out.DocumentRef, out.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// GetRun retrieves a run by ID. It returns nil, nil when the run does not exist.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = $1`, runID)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, optionally filtered by user.
func (db *DB) ListRuns(ctx context.Context, userID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs
		 WHERE ($1 = '' OR user_id = $1)
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.UserID, &r.JobInput, &r.JobInputKind, &r.JobURL, &r.RoleTitle, &r.Company, &r.Status,
		&r.InitialScore, &r.MatchScore, &r.Iterations, &r.RenderDegraded, &r.DocumentRef, &r.Error, &r.CreatedAt, &r.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

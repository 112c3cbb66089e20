package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// CreateRun inserts a new run record.
func (s *Store) CreateRun(ctx context.Context, run *types.Run) error {
	requested, err := json.Marshal(run.Requested)
	if err != nil {
		return fmt.Errorf("encoding requested kinds: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, status, error, requested, latest_version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.Status, run.Error, requested, run.LatestVersion, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns ErrNotFound when it does not exist.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*types.Run, error) {
	var run types.Run
	var requested []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, error, requested, latest_version, created_at, updated_at
		 FROM runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.Status, &run.Error, &requested, &run.LatestVersion, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if err := json.Unmarshal(requested, &run.Requested); err != nil {
		return nil, fmt.Errorf("decoding requested kinds: %w", err)
	}
	return &run, nil
}

// UpdateRunStatus records a state transition.
func (s *Store) UpdateRunStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// CompleteRun marks a run done at the given document version.
func (s *Store) CompleteRun(ctx context.Context, id uuid.UUID, latestVersion int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = 'done', error = '', latest_version = $1, updated_at = NOW()
		 WHERE id = $2`,
		latestVersion, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// FailRun marks a run failed with its single failure reason.
func (s *Store) FailRun(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = 'failed', error = $1, updated_at = NOW() WHERE id = $2`,
		reason, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// RunFilters holds optional filters for listing runs.
type RunFilters struct {
	Status string
	Limit  int
	Offset int
}

// ListRuns retrieves recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, filters RunFilters) ([]types.Run, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	query := `SELECT id, status, error, requested, latest_version, created_at, updated_at
		FROM runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	argNum++

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var run types.Run
		var requested []byte
		if err := rows.Scan(&run.ID, &run.Status, &run.Error, &requested, &run.LatestVersion, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal(requested, &run.Requested); err != nil {
			return nil, fmt.Errorf("decoding requested kinds: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// DeleteRun deletes a run, its context, and its documents (via cascade).
func (s *Store) DeleteRun(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

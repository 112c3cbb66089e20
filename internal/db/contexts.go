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

// SaveContext stores a run's frozen context. Contexts are write-once: a
// second save for the same run is ignored, never an overwrite.
func (s *Store) SaveContext(ctx context.Context, sc *types.SharedContext) error {
	payload, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encoding context: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO run_contexts (run_id, context) VALUES ($1, $2)
		 ON CONFLICT (run_id) DO NOTHING`,
		sc.RunID, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}
	return nil
}

// GetContext retrieves the frozen context bound to a run.
func (s *Store) GetContext(ctx context.Context, runID uuid.UUID) (*types.SharedContext, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT context FROM run_contexts WHERE run_id = $1`, runID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("context for run %s: %w", runID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get context: %w", err)
	}

	var sc types.SharedContext
	if err := json.Unmarshal(payload, &sc); err != nil {
		return nil, fmt.Errorf("decoding context: %w", err)
	}
	return &sc, nil
}

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// DocumentInfo is a lightweight view of one stored document version.
type DocumentInfo struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveDocument stores one document version. Versions are append-only; the
// unique (run_id, version) constraint rejects rewrites.
func (s *Store) SaveDocument(ctx context.Context, runID uuid.UUID, version int, doc *types.ResumeDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (run_id, version, document) VALUES ($1, $2, $3)`,
		runID, version, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save document v%d: %w", version, err)
	}
	return nil
}

// GetDocument retrieves one document version for a run.
func (s *Store) GetDocument(ctx context.Context, runID uuid.UUID, version int) (*types.ResumeDocument, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM documents WHERE run_id = $1 AND version = $2`,
		runID, version,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("document v%d for run %s: %w", version, runID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return decodeDocument(payload)
}

// GetLatestDocument retrieves the newest document version for a run.
func (s *Store) GetLatestDocument(ctx context.Context, runID uuid.UUID) (*types.ResumeDocument, int, error) {
	var payload []byte
	var version int
	err := s.pool.QueryRow(ctx,
		`SELECT document, version FROM documents
		 WHERE run_id = $1 ORDER BY version DESC LIMIT 1`,
		runID,
	).Scan(&payload, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, fmt.Errorf("documents for run %s: %w", runID, ErrNotFound)
		}
		return nil, 0, fmt.Errorf("failed to get latest document: %w", err)
	}

	doc, err := decodeDocument(payload)
	if err != nil {
		return nil, 0, err
	}
	return doc, version, nil
}

// ListDocuments lists the stored versions for a run, oldest first.
func (s *Store) ListDocuments(ctx context.Context, runID uuid.UUID) ([]DocumentInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT version, created_at FROM documents
		 WHERE run_id = $1 ORDER BY version ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var infos []DocumentInfo
	for rows.Next() {
		var info DocumentInfo
		if err := rows.Scan(&info.Version, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func decodeDocument(payload []byte) (*types.ResumeDocument, error) {
	var doc types.ResumeDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// MemoryStore keeps runs, contexts, and documents in process memory. It
// serves deployments without a database and the test suites; the surface
// matches Store exactly. Values are copied through JSON on the way in and
// out so callers can never mutate stored state in place.
type MemoryStore struct {
	mu        sync.RWMutex
	runs      map[uuid.UUID]*types.Run
	contexts  map[uuid.UUID][]byte
	documents map[uuid.UUID]map[int][]byte
	docTimes  map[uuid.UUID]map[int]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:      make(map[uuid.UUID]*types.Run),
		contexts:  make(map[uuid.UUID][]byte),
		documents: make(map[uuid.UUID]map[int][]byte),
		docTimes:  make(map[uuid.UUID]map[int]time.Time),
	}
}

// CreateRun inserts a new run record.
func (m *MemoryStore) CreateRun(_ context.Context, run *types.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	copied := *run
	copied.Requested = append([]types.SourceKind(nil), run.Requested...)
	m.runs[run.ID] = &copied
	return nil
}

// GetRun retrieves a run by ID.
func (m *MemoryStore) GetRun(_ context.Context, id uuid.UUID) (*types.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	copied := *run
	copied.Requested = append([]types.SourceKind(nil), run.Requested...)
	return &copied, nil
}

// UpdateRunStatus records a state transition.
func (m *MemoryStore) UpdateRunStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	run.Status = status
	return nil
}

// CompleteRun marks a run done at the given document version.
func (m *MemoryStore) CompleteRun(_ context.Context, id uuid.UUID, latestVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	run.Status = "done"
	run.Error = ""
	run.LatestVersion = latestVersion
	return nil
}

// FailRun marks a run failed with its single failure reason.
func (m *MemoryStore) FailRun(_ context.Context, id uuid.UUID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	run.Status = "failed"
	run.Error = reason
	return nil
}

// ListRuns retrieves recent runs, newest first.
func (m *MemoryStore) ListRuns(_ context.Context, filters RunFilters) ([]types.Run, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]types.Run, 0, len(m.runs))
	for _, run := range m.runs {
		if filters.Status != "" && run.Status != filters.Status {
			continue
		}
		copied := *run
		copied.Requested = append([]types.SourceKind(nil), run.Requested...)
		runs = append(runs, copied)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if filters.Offset > 0 {
		if filters.Offset >= len(runs) {
			return []types.Run{}, nil
		}
		runs = runs[filters.Offset:]
	}
	if len(runs) > filters.Limit {
		runs = runs[:filters.Limit]
	}
	return runs, nil
}

// DeleteRun deletes a run with its context and documents.
func (m *MemoryStore) DeleteRun(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[id]; !ok {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	delete(m.runs, id)
	delete(m.contexts, id)
	delete(m.documents, id)
	delete(m.docTimes, id)
	return nil
}

// SaveContext stores a run's frozen context. Write-once, as on PostgreSQL.
func (m *MemoryStore) SaveContext(_ context.Context, sc *types.SharedContext) error {
	payload, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encoding context: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.contexts[sc.RunID]; exists {
		return nil
	}
	m.contexts[sc.RunID] = payload
	return nil
}

// GetContext retrieves the frozen context bound to a run.
func (m *MemoryStore) GetContext(_ context.Context, runID uuid.UUID) (*types.SharedContext, error) {
	m.mu.RLock()
	payload, ok := m.contexts[runID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("context for run %s: %w", runID, ErrNotFound)
	}
	var sc types.SharedContext
	if err := json.Unmarshal(payload, &sc); err != nil {
		return nil, fmt.Errorf("decoding context: %w", err)
	}
	return &sc, nil
}

// SaveDocument stores one document version. Versions are append-only.
func (m *MemoryStore) SaveDocument(_ context.Context, runID uuid.UUID, version int, doc *types.ResumeDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.documents[runID] == nil {
		m.documents[runID] = make(map[int][]byte)
		m.docTimes[runID] = make(map[int]time.Time)
	}
	if _, exists := m.documents[runID][version]; exists {
		return fmt.Errorf("document v%d for run %s already exists", version, runID)
	}
	m.documents[runID][version] = payload
	m.docTimes[runID][version] = time.Now().UTC()
	return nil
}

// GetDocument retrieves one document version for a run.
func (m *MemoryStore) GetDocument(_ context.Context, runID uuid.UUID, version int) (*types.ResumeDocument, error) {
	m.mu.RLock()
	payload, ok := m.documents[runID][version]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("document v%d for run %s: %w", version, runID, ErrNotFound)
	}
	return decodeDocument(payload)
}

// GetLatestDocument retrieves the newest document version for a run.
func (m *MemoryStore) GetLatestDocument(_ context.Context, runID uuid.UUID) (*types.ResumeDocument, int, error) {
	m.mu.RLock()
	versions := m.documents[runID]
	latest := 0
	for v := range versions {
		if v > latest {
			latest = v
		}
	}
	var payload []byte
	if latest > 0 {
		payload = versions[latest]
	}
	m.mu.RUnlock()

	if latest == 0 {
		return nil, 0, fmt.Errorf("documents for run %s: %w", runID, ErrNotFound)
	}
	doc, err := decodeDocument(payload)
	if err != nil {
		return nil, 0, err
	}
	return doc, latest, nil
}

// ListDocuments lists the stored versions for a run, oldest first.
func (m *MemoryStore) ListDocuments(_ context.Context, runID uuid.UUID) ([]DocumentInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var infos []DocumentInfo
	for v := range m.documents[runID] {
		infos = append(infos, DocumentInfo{Version: v, CreatedAt: m.docTimes[runID][v]})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Version < infos[j].Version })
	return infos, nil
}

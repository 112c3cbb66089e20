package types

import (
	"time"

	"github.com/google/uuid"
)

// Run is the persisted record of one pipeline run. Status holds the
// orchestrator state name; LatestVersion counts the documents produced so
// far (generation is version 1, each feedback cycle appends one).
type Run struct {
	ID            uuid.UUID    `json:"id"`
	Status        string       `json:"status"`
	Error         string       `json:"error,omitempty"`
	Requested     []SourceKind `json:"requested"`
	LatestVersion int          `json:"latest_version"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

package sources

import (
	"fmt"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// SourceError describes a failed extraction. It ends up as the reason on a
// failed SourceResult; it never fails the run.
type SourceError struct {
	Kind    types.SourceKind
	Message string
	Cause   error
}

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s source failed: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s source failed: %s", e.Kind, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

package pipeline

import "fmt"

// InputError rejects a request before any extraction is attempted. It is the
// only failure the orchestrator raises on its own; everything after input
// validation either degrades per source or fails in synthesis.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Message)
}

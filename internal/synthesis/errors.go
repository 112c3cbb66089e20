package synthesis

import "fmt"

// SynthesisError reports that generation produced no valid structured
// document. It is fatal for the run or feedback cycle that raised it. Raw
// carries a snippet of the offending model output for diagnostics.
type SynthesisError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *SynthesisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("synthesis failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("synthesis failed: %s", e.Message)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

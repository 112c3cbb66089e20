// Package sources implements the evidence-source adapters the pipeline
// collects from: code-hosting profile, portfolio site, job posting, and
// prior resume document. Adapters never return Go errors upward; every
// outcome, including failure, is encoded as a SourceResult so one bad source
// can never abort its siblings.
package sources

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// Adapter extracts one evidence source.
type Adapter interface {
	// Kind reports which source this adapter serves.
	Kind() types.SourceKind
	// Extract resolves the source named in req. Cancellation of ctx settles
	// the result as failed with the context error as reason.
	Extract(ctx context.Context, req types.SourceRequest) types.SourceResult
}

// RetryPolicy bounds an adapter's retries. Retry lives here, per adapter and
// configured, never in the orchestrator above.
type RetryPolicy struct {
	MaxAttempts int           `json:"max_attempts"`
	Backoff     time.Duration `json:"backoff"`
}

// DefaultRetryPolicy allows one retry after a short pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, Backoff: 500 * time.Millisecond}
}

// permanentError marks a failure retrying cannot fix (bad input, 404).
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// permanent wraps err so retry stops immediately.
func permanent(err error) error {
	return &permanentError{err: err}
}

// retry runs fn until it succeeds, the attempts are spent, the failure is
// permanent, or ctx is done. Backoff doubles between attempts. It returns the
// value, the number of attempts actually made, and the final error.
func retry[T any](ctx context.Context, policy RetryPolicy, fn func() (T, error)) (T, int, error) {
	var zero T
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	backoff := policy.Backoff
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		value, err := fn()
		if err == nil {
			return value, attempt, nil
		}
		lastErr = err

		var pe *permanentError
		if errors.As(err, &pe) {
			return zero, attempt, pe.err
		}
		if attempt == attempts {
			return zero, attempt, lastErr
		}

		select {
		case <-ctx.Done():
			return zero, attempt, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return zero, attempts, lastErr
}

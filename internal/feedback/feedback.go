// Package feedback drives revision cycles over a completed run. A cycle
// reuses the run's frozen context and anchors on the immediately preceding
// document; source extraction never runs again.
package feedback

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// Synthesizer is the one capability a revision cycle may invoke.
type Synthesizer interface {
	Refine(ctx context.Context, sc *types.SharedContext, prior *types.ResumeDocument, fb types.FeedbackRequest) (*types.ResumeDocument, error)
}

// Controller validates feedback and hands it to the synthesizer. Cycles are
// unbounded; the caller decides when to stop asking.
type Controller struct {
	synth Synthesizer
}

// NewController creates a feedback controller.
func NewController(synth Synthesizer) *Controller {
	return &Controller{synth: synth}
}

// Refine produces the next document version from the prior one. The shared
// context is read, never rebuilt; a failed cycle leaves the prior document
// standing.
func (c *Controller) Refine(ctx context.Context, sc *types.SharedContext, prior *types.ResumeDocument, fb types.FeedbackRequest) (*types.ResumeDocument, error) {
	if err := fb.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feedback: %w", err)
	}
	if sc == nil {
		return nil, errors.New("feedback requires the run's bound context")
	}
	if prior == nil {
		return nil, errors.New("feedback requires a prior document to anchor on")
	}
	return c.synth.Refine(ctx, sc, prior, fb)
}

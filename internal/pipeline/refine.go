package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// Refine runs one feedback cycle over a context and prior document the
// caller already holds. The context is reused exactly as built; no source
// adapter runs. A failed cycle returns the synthesis error and leaves the
// prior document standing.
func (o *Orchestrator) Refine(ctx context.Context, sc *types.SharedContext, prior *types.ResumeDocument, fb types.FeedbackRequest, onProgress ProgressCallback) (*types.ResumeDocument, error) {
	if err := fb.Validate(); err != nil {
		return nil, &InputError{Message: "feedback must include notes or additions"}
	}

	runID := ""
	if sc != nil {
		runID = sc.RunID.String()
	}
	emit(onProgress, runID, StateRefining, "revising resume from feedback", nil)

	doc, err := o.fb.Refine(ctx, sc, prior, fb)
	if err != nil {
		emit(onProgress, runID, StateFailed, err.Error(), nil)
		return nil, err
	}

	emit(onProgress, runID, StateDone, "revised resume ready", doc)
	return doc, nil
}

// RefineRun runs a feedback cycle over a persisted run: it loads the bound
// context and the latest document, revises, and stores the next version.
// Refining re-enters from Done; a run whose last cycle failed still has its
// prior document standing, so it re-enters too. Runs that never produced a
// document cannot be refined.
func (o *Orchestrator) RefineRun(ctx context.Context, runID uuid.UUID, fb types.FeedbackRequest, onProgress ProgressCallback) (*RunResult, error) {
	if o.store == nil {
		return nil, fmt.Errorf("refining by run id requires persistence; pass the context and prior document directly")
	}
	if err := fb.Validate(); err != nil {
		return nil, &InputError{Message: "feedback must include notes or additions"}
	}

	run, err := o.store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}
	sc, err := o.store.GetContext(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("loading context for run %s: %w", runID, err)
	}
	prior, version, err := o.store.GetLatestDocument(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("loading latest document for run %s: %w", runID, err)
	}

	status := State(run.Status)
	if !CanTransition(status, StateRefining) && !(status == StateFailed && version >= 1) {
		return nil, &InputError{
			Message: fmt.Sprintf("run %s is not refinable in state %q", runID, run.Status),
		}
	}

	if err := o.store.UpdateRunStatus(ctx, runID, string(StateRefining)); err != nil {
		return nil, fmt.Errorf("marking run %s refining: %w", runID, err)
	}

	doc, err := o.Refine(ctx, sc, prior, fb, onProgress)
	if err != nil {
		o.persistFailure(ctx, runID, err)
		return nil, err
	}

	o.persistDocument(ctx, runID, version+1, doc)
	return &RunResult{
		RunID:    runID,
		State:    StateDone,
		Version:  version + 1,
		Context:  sc,
		Document: doc,
	}, nil
}

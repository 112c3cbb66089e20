// Package pipeline orchestrates a resume run: collect evidence from the
// requested sources, freeze it into a shared context, synthesize a
// structured document, and serve feedback cycles over the result.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-pipeline/internal/feedback"
	"github.com/jonathan/resume-pipeline/internal/types"
)

// DefaultCollectTimeout bounds the collection phase when the caller does not
// choose a budget.
const DefaultCollectTimeout = 120 * time.Second

// ContextBuilder collects the requested sources and assembles the context.
type ContextBuilder interface {
	Build(ctx context.Context, runID uuid.UUID, req types.SourceRequest) (*types.SharedContext, error)
}

// DocumentSynthesizer generates and revises resume documents.
type DocumentSynthesizer interface {
	Generate(ctx context.Context, sc *types.SharedContext) (*types.ResumeDocument, error)
	Refine(ctx context.Context, sc *types.SharedContext, prior *types.ResumeDocument, fb types.FeedbackRequest) (*types.ResumeDocument, error)
}

// Store persists runs, contexts, and document versions. Store failures
// during a pass are logged and skipped; persistence never blocks generation.
type Store interface {
	CreateRun(ctx context.Context, run *types.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*types.Run, error)
	UpdateRunStatus(ctx context.Context, id uuid.UUID, status string) error
	CompleteRun(ctx context.Context, id uuid.UUID, latestVersion int) error
	FailRun(ctx context.Context, id uuid.UUID, reason string) error
	SaveContext(ctx context.Context, sc *types.SharedContext) error
	GetContext(ctx context.Context, runID uuid.UUID) (*types.SharedContext, error)
	SaveDocument(ctx context.Context, runID uuid.UUID, version int, doc *types.ResumeDocument) error
	GetLatestDocument(ctx context.Context, runID uuid.UUID) (*types.ResumeDocument, int, error)
}

// Options configures an orchestrator.
type Options struct {
	// CollectTimeout bounds the collection phase. When it fires, adapters
	// still pending settle as failed and the run proceeds with whatever
	// evidence arrived. Zero or negative means no bound.
	CollectTimeout time.Duration
	// Store, when set, persists the run, its context, and every document
	// version. A nil store runs fully in memory.
	Store Store
}

// Orchestrator drives the run state machine.
type Orchestrator struct {
	builder        ContextBuilder
	synth          DocumentSynthesizer
	fb             *feedback.Controller
	store          Store
	collectTimeout time.Duration
}

// New creates an orchestrator over the given builder and synthesizer.
func New(builder ContextBuilder, synth DocumentSynthesizer, opts Options) *Orchestrator {
	return &Orchestrator{
		builder:        builder,
		synth:          synth,
		fb:             feedback.NewController(synth),
		store:          opts.Store,
		collectTimeout: opts.CollectTimeout,
	}
}

// RunResult is the terminal outcome of a successful pass.
type RunResult struct {
	RunID    uuid.UUID             `json:"run_id"`
	State    State                 `json:"state"`
	Version  int                   `json:"version"`
	Context  *types.SharedContext  `json:"context,omitempty"`
	Document *types.ResumeDocument `json:"document,omitempty"`
}

// Generate runs a full pass: collecting, aggregating, synthesizing. It
// returns the document on Done; on Failed the error carries the single
// failure reason. A request naming no source at all is rejected with
// InputError before any adapter runs. The orchestrator itself never retries
// anything; retry budgets live inside the adapters.
func (o *Orchestrator) Generate(ctx context.Context, req types.SourceRequest, onProgress ProgressCallback) (*RunResult, error) {
	if req.Empty() {
		return nil, &InputError{
			Message: "no sources supplied; provide at least one of profile URL, portfolio URL, job posting text, or prior resume",
		}
	}

	runID := uuid.New()
	started := time.Now()
	o.persistNewRun(ctx, runID, req)

	state := StateCollecting
	emit(onProgress, runID.String(), state,
		fmt.Sprintf("collecting %d source(s)", len(req.Requested())), req.Requested())

	collectCtx, cancel := o.boundCollection(ctx)
	sc, err := o.builder.Build(collectCtx, runID, req)
	cancel()
	if err != nil {
		o.persistFailure(ctx, runID, err)
		emit(onProgress, runID.String(), StateFailed, err.Error(), nil)
		return nil, fmt.Errorf("building context: %w", err)
	}

	state = o.step(ctx, runID, state, StateAggregating)
	emit(onProgress, runID.String(), state, describeResults(sc), sc.Results)
	o.persistContext(ctx, sc)

	state = o.step(ctx, runID, state, StateSynthesizing)
	emit(onProgress, runID.String(), state, "synthesizing resume document", nil)

	doc, err := o.synth.Generate(ctx, sc)
	if err != nil {
		o.persistFailure(ctx, runID, err)
		emit(onProgress, runID.String(), StateFailed, err.Error(), nil)
		return nil, err
	}

	o.persistDocument(ctx, runID, 1, doc)
	state = o.step(ctx, runID, state, StateDone)
	emit(onProgress, runID.String(), state,
		fmt.Sprintf("resume ready in %s", time.Since(started).Round(time.Millisecond)), doc)

	return &RunResult{
		RunID:    runID,
		State:    state,
		Version:  1,
		Context:  sc,
		Document: doc,
	}, nil
}

// step moves the machine forward. A transition outside the table is a bug in
// this package, not a user error; it is logged and refused.
func (o *Orchestrator) step(ctx context.Context, runID uuid.UUID, from, to State) State {
	if !CanTransition(from, to) {
		log.Printf("[PIPELINE] refused illegal transition %s -> %s for run %s", from, to, runID)
		return from
	}
	if o.store != nil && to != StateDone {
		if err := o.store.UpdateRunStatus(ctx, runID, string(to)); err != nil {
			log.Printf("[PIPELINE] persisting state %s for run %s: %v", to, runID, err)
		}
	}
	return to
}

func (o *Orchestrator) boundCollection(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.collectTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.collectTimeout)
}

func (o *Orchestrator) persistNewRun(ctx context.Context, runID uuid.UUID, req types.SourceRequest) {
	if o.store == nil {
		return
	}
	now := time.Now().UTC()
	run := &types.Run{
		ID:        runID,
		Status:    string(StateCollecting),
		Requested: req.Requested(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := o.store.CreateRun(ctx, run); err != nil {
		log.Printf("[PIPELINE] creating run record %s: %v", runID, err)
	}
}

func (o *Orchestrator) persistContext(ctx context.Context, sc *types.SharedContext) {
	if o.store == nil {
		return
	}
	if err := o.store.SaveContext(ctx, sc); err != nil {
		log.Printf("[PIPELINE] saving context for run %s: %v", sc.RunID, err)
	}
}

func (o *Orchestrator) persistDocument(ctx context.Context, runID uuid.UUID, version int, doc *types.ResumeDocument) {
	if o.store == nil {
		return
	}
	if err := o.store.SaveDocument(ctx, runID, version, doc); err != nil {
		log.Printf("[PIPELINE] saving document v%d for run %s: %v", version, runID, err)
	}
	if err := o.store.CompleteRun(ctx, runID, version); err != nil {
		log.Printf("[PIPELINE] completing run %s: %v", runID, err)
	}
}

func (o *Orchestrator) persistFailure(ctx context.Context, runID uuid.UUID, cause error) {
	if o.store == nil {
		return
	}
	if err := o.store.FailRun(ctx, runID, cause.Error()); err != nil {
		log.Printf("[PIPELINE] marking run %s failed: %v", runID, err)
	}
}

func describeResults(sc *types.SharedContext) string {
	var present, absent, failed int
	for _, res := range sc.Results {
		switch res.Status {
		case types.StatusPresent:
			present++
		case types.StatusAbsent:
			absent++
		case types.StatusFailed:
			failed++
		}
	}
	return fmt.Sprintf("%d source(s) settled: %d present, %d absent, %d failed; %d keyword(s)",
		len(sc.Results), present, absent, failed, len(sc.Keywords))
}

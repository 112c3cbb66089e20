package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-pipeline/internal/types"
)

type fakeSynth struct {
	doc    *types.ResumeDocument
	err    error
	calls  int
	lastSC *types.SharedContext
	lastFB types.FeedbackRequest
}

func (f *fakeSynth) Refine(_ context.Context, sc *types.SharedContext, _ *types.ResumeDocument, fb types.FeedbackRequest) (*types.ResumeDocument, error) {
	f.calls++
	f.lastSC = sc
	f.lastFB = fb
	return f.doc, f.err
}

func boundContext() *types.SharedContext {
	return &types.SharedContext{
		RunID: uuid.New(),
		Results: map[types.SourceKind]types.SourceResult{
			types.KindJobPosting: types.PresentPosting(&types.PostingPayload{Text: "Go engineer"}),
		},
		Keywords: []string{"go"},
		BuiltAt:  time.Now().UTC(),
	}
}

func TestRefine_DelegatesWithBoundContext(t *testing.T) {
	want := &types.ResumeDocument{Summary: "revised"}
	synth := &fakeSynth{doc: want}
	c := NewController(synth)

	sc := boundContext()
	prior := &types.ResumeDocument{Summary: "original"}
	fb := types.FeedbackRequest{Notes: "tighten the summary"}

	got, err := c.Refine(context.Background(), sc, prior, fb)
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, 1, synth.calls)
	assert.Same(t, sc, synth.lastSC, "the bound context is reused, never rebuilt")
	assert.Equal(t, fb, synth.lastFB)
}

func TestRefine_LeavesContextUntouched(t *testing.T) {
	synth := &fakeSynth{doc: &types.ResumeDocument{Summary: "revised"}}
	c := NewController(synth)

	sc := boundContext()
	before, err := json.Marshal(sc)
	require.NoError(t, err)

	_, err = c.Refine(context.Background(), sc, &types.ResumeDocument{}, types.FeedbackRequest{Notes: "shorter"})
	require.NoError(t, err)

	after, err := json.Marshal(sc)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestRefine_RejectsEmptyFeedback(t *testing.T) {
	synth := &fakeSynth{}
	c := NewController(synth)

	_, err := c.Refine(context.Background(), boundContext(), &types.ResumeDocument{}, types.FeedbackRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid feedback")
	assert.Equal(t, 0, synth.calls)
}

func TestRefine_AdditionsAloneAreValidFeedback(t *testing.T) {
	synth := &fakeSynth{doc: &types.ResumeDocument{}}
	c := NewController(synth)

	_, err := c.Refine(context.Background(), boundContext(), &types.ResumeDocument{}, types.FeedbackRequest{Additions: "AWS certified"})
	require.NoError(t, err)
	assert.Equal(t, 1, synth.calls)
}

func TestRefine_RequiresContextAndAnchor(t *testing.T) {
	synth := &fakeSynth{}
	c := NewController(synth)

	_, err := c.Refine(context.Background(), nil, &types.ResumeDocument{}, types.FeedbackRequest{Notes: "x"})
	assert.ErrorContains(t, err, "bound context")

	_, err = c.Refine(context.Background(), boundContext(), nil, types.FeedbackRequest{Notes: "x"})
	assert.ErrorContains(t, err, "prior document")
	assert.Equal(t, 0, synth.calls)
}

func TestRefine_SynthesisFailureLeavesCycleFailed(t *testing.T) {
	synth := &fakeSynth{err: errors.New("synthesis failed: output failed schema validation")}
	c := NewController(synth)

	doc, err := c.Refine(context.Background(), boundContext(), &types.ResumeDocument{}, types.FeedbackRequest{Notes: "x"})
	assert.Nil(t, doc)
	assert.Error(t, err)
}

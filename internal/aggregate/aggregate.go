// Package aggregate fans extraction out across the requested source adapters
// and assembles the settled results into one SharedContext.
package aggregate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-pipeline/internal/sources"
	"github.com/jonathan/resume-pipeline/internal/types"
)

// KeywordExtractor derives target keywords from job-posting text. Declared
// here so the builder can run against a fake without a live model client.
type KeywordExtractor interface {
	Extract(ctx context.Context, postingText string) ([]string, error)
}

// Builder collects evidence from the requested sources and assembles the
// run's SharedContext.
type Builder struct {
	adapters map[types.SourceKind]sources.Adapter
	keywords KeywordExtractor
}

// NewBuilder registers the adapters by kind. A later adapter of the same
// kind replaces an earlier one.
func NewBuilder(keywords KeywordExtractor, adapters ...sources.Adapter) *Builder {
	byKind := make(map[types.SourceKind]sources.Adapter, len(adapters))
	for _, adapter := range adapters {
		byKind[adapter.Kind()] = adapter
	}
	return &Builder{adapters: byKind, keywords: keywords}
}

// Build runs every requested adapter concurrently and waits for all of them
// to settle before assembling the context. There is no early return: one
// source's failure never aborts its siblings, and a context with zero
// present sources is still valid. Keywords are derived inside the
// job-posting branch once that source settles; any extraction failure
// degrades to an empty list rather than failing the run.
func (b *Builder) Build(ctx context.Context, runID uuid.UUID, req types.SourceRequest) (*types.SharedContext, error) {
	requested := req.Requested()

	// Each goroutine owns exactly one slot; Wait orders the writes before
	// the merge below.
	slots := make([]types.SourceResult, len(requested))
	keywords := []string{}

	g, gCtx := errgroup.WithContext(ctx)
	for i, kind := range requested {
		adapter, ok := b.adapters[kind]
		if !ok {
			slots[i] = types.FailedSource(kind, fmt.Errorf("no adapter registered for %s", kind))
			continue
		}
		g.Go(func() error {
			res := adapter.Extract(gCtx, req)
			if kind == types.KindJobPosting && res.Present() {
				keywords = b.extractKeywords(gCtx, res.Posting.Text)
			}
			slots[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make(map[types.SourceKind]types.SourceResult, len(slots))
	for _, res := range slots {
		results[res.Kind] = res
	}

	return &types.SharedContext{
		RunID:     runID,
		Results:   results,
		Keywords:  keywords,
		Additions: strings.TrimSpace(req.Additions),
		BuiltAt:   time.Now().UTC(),
	}, nil
}

func (b *Builder) extractKeywords(ctx context.Context, postingText string) []string {
	if b.keywords == nil {
		return []string{}
	}
	list, err := b.keywords.Extract(ctx, postingText)
	if err != nil {
		log.Printf("[AGGREGATE] keyword extraction degraded to empty: %v", err)
		return []string{}
	}
	return list
}

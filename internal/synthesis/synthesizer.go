// Package synthesis turns a shared evidence context into a structured
// resume document via the LLM advanced tier. Output that fails schema
// validation never becomes a document; the run fails instead.
package synthesis

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-pipeline/internal/llm"
	"github.com/jonathan/resume-pipeline/internal/prompts"
	"github.com/jonathan/resume-pipeline/internal/schemas"
	"github.com/jonathan/resume-pipeline/internal/types"
)

// Synthesizer generates and revises resume documents from a frozen context.
type Synthesizer struct {
	client llm.Client
}

// NewSynthesizer creates a synthesizer on the given client. Generation runs
// on the advanced tier.
func NewSynthesizer(client llm.Client) *Synthesizer {
	return &Synthesizer{client: client}
}

// Generate synthesizes a resume document from the context. The context is
// read, never written; a context with zero present sources still yields a
// document grounded in whatever candidate-supplied text exists.
func (s *Synthesizer) Generate(ctx context.Context, sc *types.SharedContext) (*types.ResumeDocument, error) {
	template := prompts.MustGet("synthesis.json", "generate-resume")
	prompt := prompts.Format(template, map[string]string{
		"Evidence": BuildEvidence(sc),
		"Schema":   schemas.ResumeDocumentSchema,
	})
	return s.synthesize(ctx, prompt, sc)
}

// Refine revises a prior document against the same frozen context. The prior
// document anchors the revision; feedback notes and additions steer it. No
// source extraction happens here, ever.
func (s *Synthesizer) Refine(ctx context.Context, sc *types.SharedContext, prior *types.ResumeDocument, fb types.FeedbackRequest) (*types.ResumeDocument, error) {
	anchor, err := json.MarshalIndent(prior, "", "  ")
	if err != nil {
		return nil, &SynthesisError{Message: "encoding prior document", Cause: err}
	}

	template := prompts.MustGet("synthesis.json", "revise-resume")
	prompt := prompts.Format(template, map[string]string{
		"Evidence":    BuildEvidence(sc),
		"PriorResume": string(anchor),
		"Feedback":    formatFeedback(fb),
		"Schema":      schemas.ResumeDocumentSchema,
	})
	return s.synthesize(ctx, prompt, sc)
}

func (s *Synthesizer) synthesize(ctx context.Context, prompt string, sc *types.SharedContext) (*types.ResumeDocument, error) {
	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &SynthesisError{Message: "model call failed", Cause: err}
	}

	if err := schemas.ValidateResumeDocument(raw); err != nil {
		return nil, &SynthesisError{
			Message: "output failed schema validation",
			Raw:     rawSnippet(raw),
			Cause:   err,
		}
	}

	var doc types.ResumeDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &SynthesisError{
			Message: "output did not decode as a resume document",
			Raw:     rawSnippet(raw),
			Cause:   err,
		}
	}

	enforceVerifiedFacts(&doc, sc)
	return &doc, nil
}

func formatFeedback(fb types.FeedbackRequest) string {
	var parts []string
	if strings.TrimSpace(fb.Notes) != "" {
		parts = append(parts, strings.TrimSpace(fb.Notes))
	}
	if strings.TrimSpace(fb.Additions) != "" {
		parts = append(parts, "New facts to incorporate:\n"+strings.TrimSpace(fb.Additions))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "\n\n")
}

func rawSnippet(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > 300 {
		return raw[:300] + "..."
	}
	return raw
}

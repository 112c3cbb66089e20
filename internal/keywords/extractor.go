// Package keywords derives target keywords from job-posting text using the
// LLM lite tier. Output is normalized: lowercased, deduplicated, sorted.
package keywords

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-pipeline/internal/llm"
	"github.com/jonathan/resume-pipeline/internal/prompts"
)

// ErrUnusableOutput marks extractor output that could not be parsed into any
// keyword. Callers degrade to an empty list and log a warning; this error
// never fails a run.
var ErrUnusableOutput = errors.New("keyword extraction returned unusable output")

// maxKeywordWords drops fragments too long to be a keyword; prose answers
// ("I could not find any skills...") disintegrate here.
const maxKeywordWords = 6

var keywordSplitRe = regexp.MustCompile(`,\s*|\n+`)

// Extractor extracts keywords from posting text.
type Extractor struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewExtractor creates an extractor on the lite tier.
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client, tier: llm.TierLite}
}

// Extract returns the ordered, deduplicated keyword list for the posting.
// Empty input returns an empty list without invoking the model at all. Any
// failure downstream of that returns ErrUnusableOutput (or a transport
// error); both degrade to empty at the caller, never a run failure.
func (e *Extractor) Extract(ctx context.Context, postingText string) ([]string, error) {
	trimmed := strings.TrimSpace(postingText)
	if trimmed == "" {
		return []string{}, nil
	}

	template, err := prompts.Get("keywords.json", "extract-keywords")
	if err != nil {
		return []string{}, fmt.Errorf("loading keyword prompt: %w", err)
	}
	prompt := prompts.Format(template, map[string]string{"Posting": trimmed})

	raw, err := e.client.GenerateContent(ctx, prompt, e.tier)
	if err != nil {
		return []string{}, fmt.Errorf("keyword extraction call: %w", err)
	}

	list := ParseKeywordList(raw)
	if len(list) == 0 {
		return []string{}, fmt.Errorf("%w: %q", ErrUnusableOutput, snippet(raw))
	}
	return list, nil
}

// ParseKeywordList normalizes a comma/newline separated keyword reply:
// trim, lowercase, drop empties and over-long fragments, dedupe, sort.
func ParseKeywordList(raw string) []string {
	parts := keywordSplitRe.Split(raw, -1)

	seen := make(map[string]bool, len(parts))
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		kw := strings.ToLower(strings.TrimSpace(part))
		kw = strings.Trim(kw, `."'`+"`")
		if kw == "" || len(strings.Fields(kw)) > maxKeywordWords {
			continue
		}
		if seen[kw] {
			continue
		}
		seen[kw] = true
		list = append(list, kw)
	}

	// Sorted output keeps repeat runs comparable.
	sort.Strings(list)
	return list
}

func snippet(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > 120 {
		return raw[:120] + "..."
	}
	return raw
}

package sources

import (
	"context"
	"strings"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// PostingAdapter passes through job-posting text supplied with the request.
// The text arrives inline, so this adapter touches no network and cannot
// fail: non-empty text is present, whitespace-only text is absent.
type PostingAdapter struct{}

// NewPostingAdapter creates a posting adapter.
func NewPostingAdapter() *PostingAdapter { return &PostingAdapter{} }

// Kind reports the source kind this adapter serves.
func (a *PostingAdapter) Kind() types.SourceKind { return types.KindJobPosting }

// Extract normalizes the posting text.
func (a *PostingAdapter) Extract(_ context.Context, req types.SourceRequest) types.SourceResult {
	text := CleanText(req.PostingText)
	if strings.TrimSpace(text) == "" {
		return types.AbsentSource(types.KindJobPosting)
	}
	return types.PresentPosting(&types.PostingPayload{Text: text})
}

package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-pipeline/internal/types"
)

func TestPostingAdapter_PresentWhenNonEmpty(t *testing.T) {
	adapter := NewPostingAdapter()

	res := adapter.Extract(context.Background(), types.SourceRequest{
		PostingText: "Backend   engineer.\r\nMust know Python, FastAPI.",
	})

	require.Equal(t, types.StatusPresent, res.Status)
	require.NotNil(t, res.Posting)
	assert.Equal(t, "Backend engineer.\nMust know Python, FastAPI.", res.Posting.Text)
}

func TestPostingAdapter_WhitespaceOnlyIsAbsent(t *testing.T) {
	adapter := NewPostingAdapter()

	for _, text := range []string{"", "   ", "\n\t\n"} {
		res := adapter.Extract(context.Background(), types.SourceRequest{PostingText: text})
		assert.Equal(t, types.StatusAbsent, res.Status, "input %q", text)
		assert.Nil(t, res.Posting)
	}
}

func TestPostingAdapter_NeverFails(t *testing.T) {
	adapter := NewPostingAdapter()

	res := adapter.Extract(context.Background(), types.SourceRequest{PostingText: string([]byte{0xff, 0xfe})})
	assert.NotEqual(t, types.StatusFailed, res.Status)
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-pipeline/internal/config"
	"github.com/jonathan/resume-pipeline/internal/types"
)

func TestSourceRequest_ReadsPostingFile(t *testing.T) {
	postingPath := filepath.Join(t.TempDir(), "posting.txt")
	require.NoError(t, os.WriteFile(postingPath, []byte("Backend engineer. Python required."), 0o644))

	req, err := sourceRequest(config.Config{
		ProfileURL:  "https://github.com/octocat",
		PostingFile: postingPath,
	})
	require.NoError(t, err)

	assert.Equal(t, "Backend engineer. Python required.", req.PostingText)
	assert.Equal(t, []types.SourceKind{types.KindProfile, types.KindJobPosting}, req.Requested())
}

func TestSourceRequest_MissingPostingFile(t *testing.T) {
	_, err := sourceRequest(config.Config{PostingFile: filepath.Join(t.TempDir(), "absent.txt")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read posting file")
}

func TestSourceRequest_RejectsEmpty(t *testing.T) {
	_, err := sourceRequest(config.Config{Additions: "AWS certified"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sources supplied")
}

func TestWriteAndReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")

	doc := types.ResumeDocument{Summary: "Backend engineer."}
	require.NoError(t, writeJSON(path, doc))

	var got types.ResumeDocument
	require.NoError(t, readJSON(path, &got))
	assert.Equal(t, doc.Summary, got.Summary)
}

func TestProbeAdapter_KindDispatch(t *testing.T) {
	for _, kind := range types.KindOrder {
		adapter, err := probeAdapter(kind)
		require.NoError(t, err, "kind %s", kind)
		assert.Equal(t, kind, adapter.Kind())
	}

	_, err := probeAdapter(types.SourceKind("nonsense"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source kind")
}

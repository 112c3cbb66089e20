//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedContext_Accessors(t *testing.T) {
	sc := &SharedContext{
		RunID: uuid.New(),
		Results: map[SourceKind]SourceResult{
			KindProfile:    PresentProfile(&ProfilePayload{Username: "octocat"}),
			KindPortfolio:  FailedSource(KindPortfolio, errors.New("render timed out")),
			KindJobPosting: AbsentSource(KindJobPosting),
		},
		Keywords: []string{"go", "postgres"},
		BuiltAt:  time.Now(),
	}

	assert.True(t, sc.Present(KindProfile))
	assert.False(t, sc.Present(KindPortfolio))
	assert.False(t, sc.Present(KindJobPosting))
	assert.False(t, sc.Present(KindPriorResume))

	res, ok := sc.Result(KindPortfolio)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Error, "timed out")

	_, ok = sc.Result(KindPriorResume)
	assert.False(t, ok)

	assert.Equal(t, 1, sc.PresentCount())
	assert.Equal(t, []SourceKind{KindProfile, KindPortfolio, KindJobPosting}, sc.Requested())
}

func TestSharedContext_ZeroPresentIsValid(t *testing.T) {
	sc := &SharedContext{
		RunID: uuid.New(),
		Results: map[SourceKind]SourceResult{
			KindProfile:   FailedSource(KindProfile, errors.New("user not found")),
			KindPortfolio: AbsentSource(KindPortfolio),
		},
	}
	assert.Equal(t, 0, sc.PresentCount())
	assert.Len(t, sc.Requested(), 2)
}

func TestSharedContext_JSONRoundTrip(t *testing.T) {
	orig := &SharedContext{
		RunID: uuid.New(),
		Results: map[SourceKind]SourceResult{
			KindJobPosting: PresentPosting(&PostingPayload{Text: "Python, FastAPI"}),
			KindPortfolio:  FailedSource(KindPortfolio, errors.New("render timed out after 20s")),
		},
		Keywords: []string{"fastapi", "python"},
		BuiltAt:  time.Now().UTC().Truncate(time.Second),
	}

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back SharedContext
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, orig.RunID, back.RunID)
	assert.Equal(t, orig.Keywords, back.Keywords)
	assert.True(t, back.Present(KindJobPosting))
	res, ok := back.Result(KindPortfolio)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, res.Status)
}

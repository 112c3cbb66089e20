package synthesis

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-pipeline/internal/types"
)

func testContext(results map[types.SourceKind]types.SourceResult, keywords []string, additions string) *types.SharedContext {
	return &types.SharedContext{
		RunID:     uuid.New(),
		Results:   results,
		Keywords:  keywords,
		Additions: additions,
		BuiltAt:   time.Now().UTC(),
	}
}

func fullContext() *types.SharedContext {
	return testContext(map[types.SourceKind]types.SourceResult{
		types.KindProfile: types.PresentProfile(&types.ProfilePayload{
			Username:     "octocat",
			PublicRepos:  2,
			TotalCommits: 61,
			Projects: []types.ProfileProject{
				{Name: "spoon-knife", Description: "forkable demo", Commits: 42},
				{Name: "hello-world", Commits: 19},
			},
		}),
		types.KindPortfolio: types.PresentPortfolio(&types.PortfolioPayload{
			URL:   "https://octocat.dev",
			Text:  "I build developer tools.",
			Chars: 24,
		}),
		types.KindJobPosting: types.PresentPosting(&types.PostingPayload{
			Text: "Backend engineer. Python and FastAPI required.",
		}),
		types.KindPriorResume: types.PresentDocument(&types.DocumentPayload{
			Filename: "resume.pdf",
			Format:   "pdf",
			Text:     "Octo Cat. Senior Engineer at GitHub.",
			Pages:    1,
		}),
	}, []string{"fastapi", "python"}, "Speaks fluent Spanish")
}

func TestBuildEvidence_CanonicalSectionOrder(t *testing.T) {
	evidence := BuildEvidence(fullContext())

	headings := []string{
		"## GITHUB PROFILE",
		"## PORTFOLIO SITE",
		"## JOB POSTING",
		"## PRIOR RESUME",
		"## TARGET KEYWORDS",
		"## CANDIDATE ADDITIONS",
	}
	prev := -1
	for _, h := range headings {
		idx := strings.Index(evidence, h)
		require.GreaterOrEqual(t, idx, 0, "missing heading %s", h)
		assert.Greater(t, idx, prev, "%s out of order", h)
		prev = idx
	}
}

func TestBuildEvidence_EmbedsPresentPayloads(t *testing.T) {
	evidence := BuildEvidence(fullContext())

	assert.Contains(t, evidence, `"username": "octocat"`)
	assert.Contains(t, evidence, `"commits": 42`)
	assert.Contains(t, evidence, "Source URL: https://octocat.dev")
	assert.Contains(t, evidence, "I build developer tools.")
	assert.Contains(t, evidence, "Python and FastAPI required.")
	assert.Contains(t, evidence, "Extracted from resume.pdf (pdf):")
	assert.Contains(t, evidence, "fastapi, python")
	assert.Contains(t, evidence, "Speaks fluent Spanish")
}

func TestBuildEvidence_MarksUnavailableSources(t *testing.T) {
	sc := testContext(map[types.SourceKind]types.SourceResult{
		types.KindPortfolio:  types.FailedSource(types.KindPortfolio, errors.New("render timed out after 20s")),
		types.KindJobPosting: types.AbsentSource(types.KindJobPosting),
	}, nil, "")
	evidence := BuildEvidence(sc)

	assert.Contains(t, evidence, "## GITHUB PROFILE\nUNAVAILABLE (not supplied)")
	assert.Contains(t, evidence, "## PORTFOLIO SITE\nUNAVAILABLE (render timed out after 20s)")
	assert.Contains(t, evidence, "## JOB POSTING\nUNAVAILABLE (nothing found)")
	assert.Contains(t, evidence, "## PRIOR RESUME\nUNAVAILABLE (not supplied)")
}

func TestBuildEvidence_ZeroPresentStillRendersEverySection(t *testing.T) {
	sc := testContext(map[types.SourceKind]types.SourceResult{}, nil, "Ten years of firmware work")
	evidence := BuildEvidence(sc)

	assert.Equal(t, 4, strings.Count(evidence, "UNAVAILABLE (not supplied)"))
	assert.Contains(t, evidence, "## TARGET KEYWORDS\nnone")
	assert.Contains(t, evidence, "Ten years of firmware work")
}

func TestBuildEvidence_DeterministicForSameContext(t *testing.T) {
	sc := fullContext()
	assert.Equal(t, BuildEvidence(sc), BuildEvidence(sc))
}

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-pipeline/internal/db"
	"github.com/jonathan/resume-pipeline/internal/pipeline"
	"github.com/jonathan/resume-pipeline/internal/sources"
	"github.com/jonathan/resume-pipeline/internal/types"
)

func createRun(t *testing.T, f *serverFixture) GenerateResponse {
	t.Helper()
	resp := f.postJSON(t, "/generate", types.GenerateRequest{
		ProfileURL: "https://github.com/octocat",
		JobPosting: "Backend engineer.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[GenerateResponse](t, resp)
}

func TestGetRun(t *testing.T) {
	f := newServerFixture(t, nil)
	created := createRun(t, f)

	resp, err := http.Get(f.ts.URL + "/runs/" + created.RunID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	run := decodeBody[RunResponse](t, resp)
	assert.Equal(t, created.RunID, run.RunID)
	assert.Equal(t, "done", run.Status)
	assert.Equal(t, []string{"profile", "job_posting"}, run.Requested)
	assert.Equal(t, 1, run.LatestVersion)
	assert.NotEmpty(t, run.CreatedAt)
}

func TestGetRun_UnknownIs404(t *testing.T) {
	f := newServerFixture(t, nil)

	resp, err := http.Get(f.ts.URL + "/runs/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetRun_BadIDIs400(t *testing.T) {
	f := newServerFixture(t, nil)

	resp, err := http.Get(f.ts.URL + "/runs/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListRuns(t *testing.T) {
	f := newServerFixture(t, nil)
	createRun(t, f)
	createRun(t, f)

	resp, err := http.Get(f.ts.URL + "/runs")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[struct {
		Runs  []types.Run `json:"runs"`
		Count int         `json:"count"`
	}](t, resp)
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Runs, 2)
	assert.Equal(t, "done", body.Runs[0].Status)
}

func TestListRuns_LimitAndStatus(t *testing.T) {
	f := newServerFixture(t, nil)
	createRun(t, f)
	createRun(t, f)

	resp, err := http.Get(f.ts.URL + "/runs?limit=1&status=done")
	require.NoError(t, err)
	body := decodeBody[struct {
		Count int `json:"count"`
	}](t, resp)
	assert.Equal(t, 1, body.Count)

	resp, err = http.Get(f.ts.URL + "/runs?status=failed")
	require.NoError(t, err)
	body = decodeBody[struct {
		Count int `json:"count"`
	}](t, resp)
	assert.Equal(t, 0, body.Count)

	resp, err = http.Get(f.ts.URL + "/runs?limit=1&offset=1")
	require.NoError(t, err)
	body = decodeBody[struct {
		Count int `json:"count"`
	}](t, resp)
	assert.Equal(t, 1, body.Count)
}

func TestListRuns_BadLimitIs400(t *testing.T) {
	f := newServerFixture(t, nil)

	for _, limit := range []string{"0", "-1", "abc"} {
		resp, err := http.Get(f.ts.URL + "/runs?limit=" + limit)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit=%s", limit)
	}

	resp, err := http.Get(f.ts.URL + "/runs?offset=-2")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetContext(t *testing.T) {
	f := newServerFixture(t, nil)
	created := createRun(t, f)

	resp, err := http.Get(f.ts.URL + "/runs/" + created.RunID + "/context")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sc := decodeBody[types.SharedContext](t, resp)
	assert.Equal(t, created.RunID, sc.RunID.String())
	assert.Equal(t, []string{"fastapi", "python"}, sc.Keywords)
	assert.True(t, sc.Present(types.KindJobPosting))
}

func TestGetDocument_LatestAndByVersion(t *testing.T) {
	f := newServerFixture(t, nil)
	created := createRun(t, f)

	fbResp := f.postJSON(t, "/runs/"+created.RunID+"/feedback", types.FeedbackRequest{Notes: "shorter"})
	require.Equal(t, http.StatusCreated, fbResp.StatusCode)
	fbResp.Body.Close()

	type docBody struct {
		Version  int                   `json:"version"`
		Document *types.ResumeDocument `json:"document"`
	}

	resp, err := http.Get(f.ts.URL + "/runs/" + created.RunID + "/document")
	require.NoError(t, err)
	latest := decodeBody[docBody](t, resp)
	assert.Equal(t, 2, latest.Version)
	assert.Equal(t, "Backend engineer, revised.", latest.Document.Summary)

	resp, err = http.Get(f.ts.URL + "/runs/" + created.RunID + "/document?version=1")
	require.NoError(t, err)
	first := decodeBody[docBody](t, resp)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, "Backend engineer.", first.Document.Summary)

	resp, err = http.Get(f.ts.URL + "/runs/" + created.RunID + "/document?version=9")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(f.ts.URL + "/runs/" + created.RunID + "/document?version=zero")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	f := newServerFixture(t, nil)
	created := createRun(t, f)

	fbResp := f.postJSON(t, "/runs/"+created.RunID+"/feedback", types.FeedbackRequest{Notes: "shorter"})
	require.Equal(t, http.StatusCreated, fbResp.StatusCode)
	fbResp.Body.Close()

	resp, err := http.Get(f.ts.URL + "/runs/" + created.RunID + "/documents")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[struct {
		RunID     string            `json:"run_id"`
		Documents []db.DocumentInfo `json:"documents"`
		Count     int               `json:"count"`
	}](t, resp)
	assert.Equal(t, created.RunID, body.RunID)
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Documents, 2)
	assert.Equal(t, 1, body.Documents[0].Version)
	assert.Equal(t, 2, body.Documents[1].Version)
}

func TestDeleteRun(t *testing.T) {
	f := newServerFixture(t, nil)
	created := createRun(t, f)

	req, err := http.NewRequest(http.MethodDelete, f.ts.URL+"/runs/"+created.RunID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(f.ts.URL + "/runs/" + created.RunID)
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)

	// Context and documents go with the run.
	ctxResp, err := http.Get(f.ts.URL + "/runs/" + created.RunID + "/context")
	require.NoError(t, err)
	ctxResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, ctxResp.StatusCode)
}

func TestDeleteRun_UnknownIs404(t *testing.T) {
	f := newServerFixture(t, nil)

	req, err := http.NewRequest(http.MethodDelete, f.ts.URL+"/runs/"+uuid.NewString(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// probeAdapter settles a canned result for probe tests.
type probeAdapter struct {
	kind   types.SourceKind
	result types.SourceResult
}

func (a *probeAdapter) Kind() types.SourceKind { return a.kind }

func (a *probeAdapter) Extract(context.Context, types.SourceRequest) types.SourceResult {
	return a.result
}

func TestProbe(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	store := db.NewMemoryStore()
	synth := &fakeSynth{doc: sampleDoc("Backend engineer."), refined: sampleDoc("revised")}
	orch := pipeline.New(&fakeBuilder{}, synth, pipeline.Options{Store: store})
	srv, err := New(Config{
		Orchestrator: orch,
		Store:        store,
		Adapters: []sources.Adapter{
			&probeAdapter{
				kind:   types.KindProfile,
				result: types.PresentProfile(&types.ProfilePayload{Username: "octocat", PublicRepos: 2}),
			},
		},
	})
	require.NoError(t, err)

	fx := &serverFixture{srv: srv, ts: httptest.NewServer(srv.Handler())}
	t.Cleanup(fx.ts.Close)

	resp := fx.postJSON(t, "/probe/profile", types.GenerateRequest{ProfileURL: "https://github.com/octocat"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decodeBody[types.SourceResult](t, resp)
	assert.Equal(t, types.KindProfile, result.Kind)
	assert.Equal(t, types.StatusPresent, result.Status)
	assert.Equal(t, "octocat", result.Profile.Username)

	// A kind with no adapter wired is unknown.
	resp = fx.postJSON(t, "/probe/portfolio", types.GenerateRequest{PortfolioURL: "https://octocat.dev"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A request that never names the probed source is rejected.
	resp = fx.postJSON(t, "/probe/profile", types.GenerateRequest{JobPosting: "Backend engineer."})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

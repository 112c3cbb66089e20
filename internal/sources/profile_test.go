package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// fakeGitHub serves the two endpoints the profile adapter hits.
type fakeGitHub struct {
	repos      []map[string]interface{}
	commits    map[string]int // repo name -> commit count
	userStatus int            // 0 means 200
	repoStatus map[string]int // per-repo commits endpoint status override
	failFirst  int32          // serve this many 500s before succeeding
}

func (f *fakeGitHub) server(t *testing.T, username string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /users/"+username+"/repos", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&f.failFirst, -1) >= 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if f.userStatus != 0 {
			w.WriteHeader(f.userStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(f.repos)
	})

	mux.HandleFunc("GET /repos/"+username+"/{repo}/commits", func(w http.ResponseWriter, r *http.Request) {
		repo := r.PathValue("repo")
		if status, ok := f.repoStatus[repo]; ok {
			w.WriteHeader(status)
			return
		}
		assert.Equal(t, username, r.URL.Query().Get("author"))
		count := f.commits[repo]
		commits := make([]map[string]string, count)
		for i := range commits {
			commits[i] = map[string]string{"sha": fmt.Sprintf("%s-%d", repo, i)}
		}
		_ = json.NewEncoder(w).Encode(commits)
	})

	return httptest.NewServer(mux)
}

func repoJSON(name string, created, updated time.Time) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"description": "desc of " + name,
		"fork":        false,
		"created_at":  created.Format(time.RFC3339),
		"updated_at":  updated.Format(time.RFC3339),
	}
}

func newTestProfileAdapter(baseURL string) *ProfileAdapter {
	a := NewProfileAdapter("", RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond})
	a.APIBase = baseURL
	return a
}

func TestProfileAdapter_Extract(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gh := &fakeGitHub{
		repos: []map[string]interface{}{
			repoJSON("older", now.AddDate(-3, 0, 0), now.AddDate(0, -6, 0)),
			repoJSON("fresh", now.AddDate(-1, 0, 0), now),
		},
		commits: map[string]int{"older": 12, "fresh": 34},
	}
	server := gh.server(t, "octocat")
	defer server.Close()

	adapter := newTestProfileAdapter(server.URL)
	res := adapter.Extract(context.Background(), types.SourceRequest{
		ProfileURL: "https://github.com/octocat",
	})

	require.Equal(t, types.StatusPresent, res.Status)
	require.NotNil(t, res.Profile)
	p := res.Profile

	assert.Equal(t, "octocat", p.Username)
	assert.Equal(t, 2, p.PublicRepos)
	assert.Equal(t, 46, p.TotalCommits)
	assert.Equal(t, "fresh", p.MostRecentRepo)
	assert.Equal(t, now.Format(time.RFC3339), p.LastActive)
	assert.Equal(t, now.AddDate(-3, 0, 0).Format(time.RFC3339), p.FirstRepoCreated)

	// Projects sorted by commit count, highest first.
	require.Len(t, p.Projects, 2)
	assert.Equal(t, "fresh", p.Projects[0].Name)
	assert.Equal(t, 34, p.Projects[0].Commits)
	assert.Equal(t, "older", p.Projects[1].Name)
	assert.Equal(t, "desc of older", p.Projects[1].Description)
}

func TestProfileAdapter_NoReposIsAbsent(t *testing.T) {
	gh := &fakeGitHub{repos: []map[string]interface{}{}}
	server := gh.server(t, "newbie")
	defer server.Close()

	adapter := newTestProfileAdapter(server.URL)
	res := adapter.Extract(context.Background(), types.SourceRequest{
		ProfileURL: "https://github.com/newbie",
	})

	assert.Equal(t, types.StatusAbsent, res.Status)
	assert.Nil(t, res.Profile)
}

func TestProfileAdapter_UnknownUserFailsWithoutRetry(t *testing.T) {
	gh := &fakeGitHub{userStatus: http.StatusNotFound}
	server := gh.server(t, "ghost")
	defer server.Close()

	adapter := newTestProfileAdapter(server.URL)
	adapter.Retry = RetryPolicy{MaxAttempts: 5, Backoff: time.Millisecond}

	res := adapter.Extract(context.Background(), types.SourceRequest{
		ProfileURL: "https://github.com/ghost",
	})

	assert.Equal(t, types.StatusFailed, res.Status)
	assert.Contains(t, res.Error, "profile not found")
	assert.Equal(t, 1, res.Attempts)
}

func TestProfileAdapter_RetriesTransientFailure(t *testing.T) {
	gh := &fakeGitHub{
		repos:     []map[string]interface{}{repoJSON("solo", time.Now().AddDate(-1, 0, 0), time.Now())},
		commits:   map[string]int{"solo": 3},
		failFirst: 1,
	}
	server := gh.server(t, "octocat")
	defer server.Close()

	adapter := newTestProfileAdapter(server.URL)
	res := adapter.Extract(context.Background(), types.SourceRequest{
		ProfileURL: "https://github.com/octocat",
	})

	require.Equal(t, types.StatusPresent, res.Status)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 3, res.Profile.TotalCommits)
}

func TestProfileAdapter_EmptyRepoCountsZero(t *testing.T) {
	gh := &fakeGitHub{
		repos: []map[string]interface{}{
			repoJSON("full", time.Now().AddDate(-1, 0, 0), time.Now()),
			repoJSON("empty", time.Now().AddDate(-2, 0, 0), time.Now().AddDate(0, -1, 0)),
		},
		commits:    map[string]int{"full": 9},
		repoStatus: map[string]int{"empty": http.StatusConflict},
	}
	server := gh.server(t, "octocat")
	defer server.Close()

	adapter := newTestProfileAdapter(server.URL)
	res := adapter.Extract(context.Background(), types.SourceRequest{
		ProfileURL: "https://github.com/octocat",
	})

	require.Equal(t, types.StatusPresent, res.Status)
	assert.Equal(t, 9, res.Profile.TotalCommits)
	require.Len(t, res.Profile.Projects, 2)
	assert.Equal(t, 0, res.Profile.Projects[1].Commits)
}

func TestProfileAdapter_InvalidURL(t *testing.T) {
	adapter := NewProfileAdapter("", DefaultRetryPolicy())

	res := adapter.Extract(context.Background(), types.SourceRequest{ProfileURL: "::not-a-url::"})
	assert.Equal(t, types.StatusFailed, res.Status)
	assert.Contains(t, res.Error, "invalid profile URL")
}

func TestParseProfileUsername(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://github.com/octocat", "octocat", false},
		{"https://github.com/octocat/", "octocat", false},
		{"https://gitlab.example.com/team/octocat", "octocat", false},
		{"https://github.com/", "", true},
		{"octocat", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseProfileUsername(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

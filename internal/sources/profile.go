package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// DefaultGitHubAPIBase is the public GitHub REST API endpoint.
const DefaultGitHubAPIBase = "https://api.github.com"

// reposPerPage caps both the repo listing and the per-repo commit sample.
// Commit counts come from the first page only; 100 commits is reported as
// "100", not paged further.
const reposPerPage = 100

// ProfileAdapter extracts public repository activity from a GitHub profile
// URL: repo list, per-repo commit counts authored by the profile owner, and
// recency markers.
type ProfileAdapter struct {
	APIBase string
	Token   string
	Retry   RetryPolicy

	httpClient *http.Client
}

// NewProfileAdapter creates a profile adapter. The token is optional; when
// set it is sent as a bearer token, which raises API rate limits.
func NewProfileAdapter(token string, retry RetryPolicy) *ProfileAdapter {
	return &ProfileAdapter{
		APIBase:    DefaultGitHubAPIBase,
		Token:      token,
		Retry:      retry,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Kind reports the source kind this adapter serves.
func (a *ProfileAdapter) Kind() types.SourceKind { return types.KindProfile }

// Extract resolves the profile URL into a ProfilePayload. A profile with no
// public repositories is absent, not failed; an unknown user or unreachable
// API is failed with the reason recorded.
func (a *ProfileAdapter) Extract(ctx context.Context, req types.SourceRequest) types.SourceResult {
	username, err := ParseProfileUsername(req.ProfileURL)
	if err != nil {
		return types.FailedSource(types.KindProfile, &SourceError{
			Kind: types.KindProfile, Message: "invalid profile URL", Cause: err,
		})
	}

	repos, attempts, err := retry(ctx, a.Retry, func() ([]githubRepo, error) {
		return a.listRepos(ctx, username)
	})
	if err != nil {
		res := types.FailedSource(types.KindProfile, &SourceError{
			Kind: types.KindProfile, Message: fmt.Sprintf("listing repositories for %q", username), Cause: err,
		})
		res.Attempts = attempts
		return res
	}
	if len(repos) == 0 {
		res := types.AbsentSource(types.KindProfile)
		res.Attempts = attempts
		return res
	}

	payload := &types.ProfilePayload{
		Username:    username,
		PublicRepos: len(repos),
	}

	var mostRecent, firstCreated *githubRepo
	for i := range repos {
		repo := &repos[i]

		commits, err := a.countCommits(ctx, username, repo.Name)
		if err != nil {
			// Commit counting degrades per repo; the listing already succeeded.
			log.Printf("[PROFILE] commit count for %s/%s failed: %v", username, repo.Name, err)
		}
		payload.TotalCommits += commits
		payload.Projects = append(payload.Projects, types.ProfileProject{
			Name:        repo.Name,
			Description: repo.Description,
			Commits:     commits,
		})

		if mostRecent == nil || repo.UpdatedAt.After(mostRecent.UpdatedAt) {
			mostRecent = repo
		}
		if firstCreated == nil || repo.CreatedAt.Before(firstCreated.CreatedAt) {
			firstCreated = repo
		}
	}

	if mostRecent != nil {
		payload.MostRecentRepo = mostRecent.Name
		payload.LastActive = mostRecent.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if firstCreated != nil {
		payload.FirstRepoCreated = firstCreated.CreatedAt.UTC().Format(time.RFC3339)
	}

	sort.SliceStable(payload.Projects, func(i, j int) bool {
		return payload.Projects[i].Commits > payload.Projects[j].Commits
	})

	res := types.PresentProfile(payload)
	res.Attempts = attempts
	return res
}

// ParseProfileUsername pulls the username out of a profile URL: the last
// non-empty path segment, e.g. https://github.com/octocat -> octocat.
func ParseProfileUsername(profileURL string) (string, error) {
	parsed, err := url.Parse(profileURL)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("not a valid URL: %q", profileURL)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	username := segments[len(segments)-1]
	if username == "" {
		return "", fmt.Errorf("no username in URL path: %q", profileURL)
	}
	return username, nil
}

// githubRepo is the slice of the repos API response this adapter reads.
type githubRepo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Fork        bool      `json:"fork"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a *ProfileAdapter) listRepos(ctx context.Context, username string) ([]githubRepo, error) {
	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%d&sort=updated&type=owner",
		a.APIBase, url.PathEscape(username), reposPerPage)

	body, status, err := a.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, permanent(fmt.Errorf("profile not found"))
	case status != http.StatusOK:
		return nil, fmt.Errorf("HTTP status %d", status)
	}

	var repos []githubRepo
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, permanent(fmt.Errorf("decoding repos response: %w", err))
	}
	return repos, nil
}

// countCommits returns how many commits the owner authored in a repo,
// sampled from the first page of the commits listing. Empty repositories
// (404/409) count as zero.
func (a *ProfileAdapter) countCommits(ctx context.Context, username, repo string) (int, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits?author=%s&per_page=%d",
		a.APIBase, url.PathEscape(username), url.PathEscape(repo), url.QueryEscape(username), reposPerPage)

	body, status, err := a.get(ctx, endpoint)
	if err != nil {
		return 0, err
	}
	switch status {
	case http.StatusOK:
		var commits []json.RawMessage
		if err := json.Unmarshal(body, &commits); err != nil {
			return 0, fmt.Errorf("decoding commits response: %w", err)
		}
		return len(commits), nil
	case http.StatusNotFound, http.StatusConflict:
		// 409 is GitHub's answer for an empty repository.
		return 0, nil
	default:
		return 0, fmt.Errorf("HTTP status %d", status)
	}
}

func (a *ProfileAdapter) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, permanent(err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	client := a.httpClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// Package types provides type definitions for structured data used throughout the resume-pipeline system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SourceKind identifies one of the evidence sources a run can draw from.
type SourceKind string

// The four source kinds. KindOrder below is the canonical ordering used
// wherever results are merged, rendered, or persisted.
const (
	KindProfile     SourceKind = "profile"
	KindPortfolio   SourceKind = "portfolio"
	KindJobPosting  SourceKind = "job_posting"
	KindPriorResume SourceKind = "prior_resume"
)

// KindOrder lists every source kind in canonical order.
var KindOrder = []SourceKind{KindProfile, KindPortfolio, KindJobPosting, KindPriorResume}

// SourceStatus is the outcome tag of a source extraction.
type SourceStatus string

// Source extraction outcomes. A requested source always lands on exactly one
// of these; there is no fourth state.
const (
	StatusPresent SourceStatus = "present"
	StatusAbsent  SourceStatus = "absent"
	StatusFailed  SourceStatus = "failed"
)

// SourceResult is the settled outcome of one adapter extraction. Exactly one
// payload pointer is populated when Status is StatusPresent, matching Kind;
// Error holds the failure reason only when Status is StatusFailed. Use the
// constructors below rather than building literals so the tag and payload
// stay paired.
type SourceResult struct {
	Kind     SourceKind   `json:"kind"`
	Status   SourceStatus `json:"status"`
	Error    string       `json:"error,omitempty"`
	Attempts int          `json:"attempts,omitempty"`

	Profile   *ProfilePayload   `json:"profile,omitempty"`
	Portfolio *PortfolioPayload `json:"portfolio,omitempty"`
	Posting   *PostingPayload   `json:"posting,omitempty"`
	Document  *DocumentPayload  `json:"document,omitempty"`
}

// Present reports whether the extraction yielded usable content.
func (r SourceResult) Present() bool {
	return r.Status == StatusPresent
}

// PresentProfile builds a present result for the profile kind.
func PresentProfile(p *ProfilePayload) SourceResult {
	return SourceResult{Kind: KindProfile, Status: StatusPresent, Profile: p}
}

// PresentPortfolio builds a present result for the portfolio kind.
func PresentPortfolio(p *PortfolioPayload) SourceResult {
	return SourceResult{Kind: KindPortfolio, Status: StatusPresent, Portfolio: p}
}

// PresentPosting builds a present result for the job-posting kind.
func PresentPosting(p *PostingPayload) SourceResult {
	return SourceResult{Kind: KindJobPosting, Status: StatusPresent, Posting: p}
}

// PresentDocument builds a present result for the prior-resume kind.
func PresentDocument(p *DocumentPayload) SourceResult {
	return SourceResult{Kind: KindPriorResume, Status: StatusPresent, Document: p}
}

// AbsentSource builds an absent result: the source was reachable but had
// nothing to contribute.
func AbsentSource(kind SourceKind) SourceResult {
	return SourceResult{Kind: kind, Status: StatusAbsent}
}

// FailedSource builds a failed result carrying the failure reason.
func FailedSource(kind SourceKind, err error) SourceResult {
	res := SourceResult{Kind: kind, Status: StatusFailed}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// ProfilePayload summarizes public activity on a code-hosting profile.
type ProfilePayload struct {
	Username         string           `json:"username"`
	PublicRepos      int              `json:"public_repos"`
	TotalCommits     int              `json:"total_commits"`
	MostRecentRepo   string           `json:"most_recent_repo,omitempty"`
	LastActive       string           `json:"last_active,omitempty"`
	FirstRepoCreated string           `json:"first_repo_created,omitempty"`
	Projects         []ProfileProject `json:"projects"`
}

// ProfileProject is one repository with the owner's verified commit count.
type ProfileProject struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Commits     int    `json:"commits"`
}

// PortfolioPayload is the rendered text of a portfolio page.
type PortfolioPayload struct {
	URL   string `json:"url"`
	Text  string `json:"text"`
	Chars int    `json:"chars"`
}

// PostingPayload is the raw text of a job posting.
type PostingPayload struct {
	Text string `json:"text"`
}

// DocumentPayload is the plain text extracted from a prior resume document.
type DocumentPayload struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Text     string `json:"text"`
	Pages    int    `json:"pages,omitempty"`
}

// SourceRequest names the sources a run should draw from. Every field is
// optional; a prior resume may arrive as a local path, inline bytes, or an
// object-storage key.
type SourceRequest struct {
	ProfileURL   string `json:"profile_url,omitempty"`
	PortfolioURL string `json:"portfolio_url,omitempty"`
	PostingText  string `json:"posting_text,omitempty"`

	ResumeFile     string `json:"resume_file,omitempty"`
	ResumeFilename string `json:"resume_filename,omitempty"`
	ResumeData     []byte `json:"-"`
	ResumeKey      string `json:"resume_key,omitempty"`

	// Additions are extra facts supplied by the candidate, passed through to
	// synthesis verbatim. They are not a source and never reach an adapter.
	Additions string `json:"additions,omitempty"`
}

// Wants reports whether the request supplies a reference for the given kind.
func (r SourceRequest) Wants(kind SourceKind) bool {
	switch kind {
	case KindProfile:
		return r.ProfileURL != ""
	case KindPortfolio:
		return r.PortfolioURL != ""
	case KindJobPosting:
		return r.PostingText != ""
	case KindPriorResume:
		return r.ResumeFile != "" || len(r.ResumeData) > 0 || r.ResumeKey != ""
	}
	return false
}

// Requested returns the supplied kinds in canonical order.
func (r SourceRequest) Requested() []SourceKind {
	var kinds []SourceKind
	for _, kind := range KindOrder {
		if r.Wants(kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Empty reports whether no source at all was supplied. Additions alone do
// not count: there is nothing to ground a resume in.
func (r SourceRequest) Empty() bool {
	return len(r.Requested()) == 0
}

package synthesis

import (
	"strings"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// enforceVerifiedFacts is the post-pass that keeps the document honest about
// numbers the model cannot know. A project's commit count survives only when
// the profile source is present and carries a project of the same name; the
// verified count then replaces whatever the model wrote. Everything else is
// zeroed. It also folds the context keywords into the document's keyword
// list, context first, so the targeting evidence is never silently dropped.
func enforceVerifiedFacts(doc *types.ResumeDocument, sc *types.SharedContext) {
	verified := verifiedCommitCounts(sc)
	for i := range doc.Projects {
		if count, ok := verified[strings.ToLower(doc.Projects[i].Name)]; ok {
			doc.Projects[i].Commits = count
		} else {
			doc.Projects[i].Commits = 0
		}
	}

	doc.Keywords = mergeKeywords(sc.Keywords, doc.Keywords)
}

// verifiedCommitCounts indexes the profile's projects by lowercased name.
// Empty when the profile source is anything but present.
func verifiedCommitCounts(sc *types.SharedContext) map[string]int {
	counts := make(map[string]int)
	res, ok := sc.Result(types.KindProfile)
	if !ok || !res.Present() || res.Profile == nil {
		return counts
	}
	for _, project := range res.Profile.Projects {
		counts[strings.ToLower(project.Name)] = project.Commits
	}
	return counts
}

// mergeKeywords joins the context keywords with the document's own,
// deduplicating case-insensitively and keeping context order first.
func mergeKeywords(contextKws, docKws []string) []string {
	merged := make([]string, 0, len(contextKws)+len(docKws))
	seen := make(map[string]bool, len(contextKws)+len(docKws))

	appendAll := func(kws []string) {
		for _, kw := range kws {
			norm := strings.ToLower(strings.TrimSpace(kw))
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			merged = append(merged, norm)
		}
	}
	appendAll(contextKws)
	appendAll(docKws)

	return merged
}

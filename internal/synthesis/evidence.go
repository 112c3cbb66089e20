package synthesis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-pipeline/internal/types"
)

// sectionTitles maps each source kind to its evidence heading.
var sectionTitles = map[types.SourceKind]string{
	types.KindProfile:     "GITHUB PROFILE",
	types.KindPortfolio:   "PORTFOLIO SITE",
	types.KindJobPosting:  "JOB POSTING",
	types.KindPriorResume: "PRIOR RESUME",
}

// BuildEvidence renders the shared context into the evidence block the
// synthesis prompts embed. Sections appear in canonical kind order no matter
// when their adapters settled, so identical results always produce an
// identical prompt. Sources that were absent, failed, or never supplied are
// written as UNAVAILABLE rather than omitted; the model must see that they
// contributed nothing.
func BuildEvidence(sc *types.SharedContext) string {
	var sb strings.Builder
	sb.WriteString("EVIDENCE\n")

	for _, kind := range types.KindOrder {
		sb.WriteString(fmt.Sprintf("\n## %s\n", sectionTitles[kind]))

		res, ok := sc.Result(kind)
		switch {
		case !ok:
			sb.WriteString("UNAVAILABLE (not supplied)\n")
		case res.Status == types.StatusAbsent:
			sb.WriteString("UNAVAILABLE (nothing found)\n")
		case res.Status == types.StatusFailed:
			reason := res.Error
			if reason == "" {
				reason = "extraction failed"
			}
			sb.WriteString(fmt.Sprintf("UNAVAILABLE (%s)\n", reason))
		default:
			writePresentSection(&sb, res)
		}
	}

	sb.WriteString("\n## TARGET KEYWORDS\n")
	if len(sc.Keywords) > 0 {
		sb.WriteString(strings.Join(sc.Keywords, ", "))
		sb.WriteString("\n")
	} else {
		sb.WriteString("none\n")
	}

	sb.WriteString("\n## CANDIDATE ADDITIONS\n")
	if sc.Additions != "" {
		sb.WriteString(sc.Additions)
		sb.WriteString("\n")
	} else {
		sb.WriteString("none\n")
	}

	return sb.String()
}

func writePresentSection(sb *strings.Builder, res types.SourceResult) {
	switch res.Kind {
	case types.KindProfile:
		// Structured payload goes in as JSON so commit counts and dates
		// survive verbatim.
		data, err := json.MarshalIndent(res.Profile, "", "  ")
		if err != nil {
			sb.WriteString("UNAVAILABLE (profile payload unreadable)\n")
			return
		}
		sb.Write(data)
		sb.WriteString("\n")
	case types.KindPortfolio:
		sb.WriteString(fmt.Sprintf("Source URL: %s\n\n", res.Portfolio.URL))
		sb.WriteString(res.Portfolio.Text)
		sb.WriteString("\n")
	case types.KindJobPosting:
		sb.WriteString(res.Posting.Text)
		sb.WriteString("\n")
	case types.KindPriorResume:
		sb.WriteString(fmt.Sprintf("Extracted from %s (%s):\n\n", res.Document.Filename, res.Document.Format))
		sb.WriteString(res.Document.Text)
		sb.WriteString("\n")
	}
}

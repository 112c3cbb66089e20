// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-pipeline/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintContext outputs a human-readable summary of the frozen evidence
// snapshot: one line per requested source with its settled status, then the
// extracted posting keywords.
func (p *Printer) PrintContext(sc *types.SharedContext) {
	if sc == nil {
		return
	}

	var sb strings.Builder

	for _, kind := range sc.Requested() {
		res := sc.Results[kind]
		sb.WriteString(fmt.Sprintf("%s %-13s %s\n", statusGlyph(res.Status), kind, describeResult(res)))
	}

	if sc.Additions != "" {
		sb.WriteString("\nAdditions supplied by candidate\n")
	}

	if len(sc.Keywords) > 0 {
		sb.WriteString("\nKeywords:\n")
		count := min(len(sc.Keywords), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", sc.Keywords[i]))
		}
		if len(sc.Keywords) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(sc.Keywords)-maxItemsToShow))
		}
	}

	p.printBox("COLLECTED EVIDENCE", strings.TrimSuffix(sb.String(), "\n"))
}

func statusGlyph(status types.SourceStatus) string {
	switch status {
	case types.StatusPresent:
		return "✓"
	case types.StatusAbsent:
		return "·"
	default:
		return "✗"
	}
}

func describeResult(res types.SourceResult) string {
	switch res.Status {
	case types.StatusAbsent:
		return "nothing to contribute"
	case types.StatusFailed:
		return res.Error
	}

	switch {
	case res.Profile != nil:
		return fmt.Sprintf("%s: %d repos, %d commits", res.Profile.Username, res.Profile.PublicRepos, res.Profile.TotalCommits)
	case res.Portfolio != nil:
		return fmt.Sprintf("%s (%d chars)", res.Portfolio.URL, res.Portfolio.Chars)
	case res.Posting != nil:
		return fmt.Sprintf("%d chars of posting text", len(res.Posting.Text))
	case res.Document != nil:
		return fmt.Sprintf("%s (%s, %d chars)", res.Document.Filename, res.Document.Format, len(res.Document.Text))
	}
	return "present"
}

// PrintDocument outputs the synthesized resume document: summary, skill
// counts, the top roles and projects. A non-positive version prints without
// a version marker.
func (p *Printer) PrintDocument(doc *types.ResumeDocument, version int) {
	if doc == nil {
		return
	}

	var sb strings.Builder

	if name := doc.PersonalInfo["name"]; name != "" {
		sb.WriteString(fmt.Sprintf("Name:     %s\n", name))
	}
	summary := doc.Summary
	if len(summary) > 50 {
		summary = summary[:47] + "..."
	}
	sb.WriteString(fmt.Sprintf("Summary:  %s\n", summary))
	sb.WriteString("\n")

	if n := countSkills(doc.Skills); n > 0 {
		sb.WriteString(fmt.Sprintf("Skills:   %d across %d categories\n", n, countSkillCategories(doc.Skills)))
	}

	if len(doc.Experience) > 0 {
		sb.WriteString("Experience:\n")
		count := min(len(doc.Experience), maxItemsToShow)
		for i := 0; i < count; i++ {
			exp := doc.Experience[i]
			sb.WriteString(fmt.Sprintf("  • %s, %s (%d bullets)\n", exp.Title, exp.Company, len(exp.Bullets)))
		}
		if len(doc.Experience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(doc.Experience)-maxItemsToShow))
		}
	}

	if len(doc.Projects) > 0 {
		sb.WriteString("Projects:\n")
		count := min(len(doc.Projects), maxItemsToShow)
		for i := 0; i < count; i++ {
			proj := doc.Projects[i]
			sb.WriteString(fmt.Sprintf("  • %s", proj.Name))
			if proj.Commits > 0 {
				sb.WriteString(fmt.Sprintf(" (%d commits)", proj.Commits))
			}
			sb.WriteString("\n")
		}
		if len(doc.Projects) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(doc.Projects)-maxItemsToShow))
		}
	}

	if len(doc.Keywords) > 0 {
		keywords := strings.Join(doc.Keywords, ", ")
		if len(keywords) > 44 {
			keywords = keywords[:41] + "..."
		}
		sb.WriteString(fmt.Sprintf("Keywords: %s\n", keywords))
	}

	title := "RESUME DOCUMENT"
	if version > 0 {
		title = fmt.Sprintf("RESUME DOCUMENT v%d", version)
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

func countSkills(s types.SkillSet) int {
	return len(s.Frontend) + len(s.Backend) + len(s.DevOps) + len(s.Cloud) + len(s.AIML) + len(s.Tools)
}

func countSkillCategories(s types.SkillSet) int {
	n := 0
	for _, group := range [][]string{s.Frontend, s.Backend, s.DevOps, s.Cloud, s.AIML, s.Tools} {
		if len(group) > 0 {
			n++
		}
	}
	return n
}

// PrintRun outputs the stored run record.
func (p *Printer) PrintRun(run *types.Run) {
	if run == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", run.Status))
	if run.Error != "" {
		reason := run.Error
		if len(reason) > 44 {
			reason = reason[:41] + "..."
		}
		sb.WriteString(fmt.Sprintf("Error:    %s\n", reason))
	}
	kinds := make([]string, 0, len(run.Requested))
	for _, kind := range run.Requested {
		kinds = append(kinds, string(kind))
	}
	sb.WriteString(fmt.Sprintf("Sources:  %s\n", strings.Join(kinds, ", ")))
	if run.LatestVersion > 0 {
		sb.WriteString(fmt.Sprintf("Versions: %d\n", run.LatestVersion))
	}

	p.printBox("PIPELINE RUN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProgress writes one progress line. Unlike the box printers this is a
// rolling log; generation emits one line per state.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(state, message string) {
	fmt.Fprintf(p.out, "▸ %-13s %s\n", state, message)
}

package sources

import (
	"regexp"
	"strings"
)

var (
	multiSpaceRe = regexp.MustCompile(`\s+`)
	blankLinesRe = regexp.MustCompile(`\n\n\n+`)
	xmlTagRe     = regexp.MustCompile(`<[^>]+>`)
)

// CleanText normalizes text content while preserving its line structure:
// line endings become LF, in-line runs of whitespace collapse to one space,
// and runs of blank lines collapse to one blank line. Posting and document
// payloads go through this before they reach the context.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			line = multiSpaceRe.ReplaceAllString(line, " ")
		}
		cleaned = append(cleaned, line)
	}

	result := strings.Join(cleaned, "\n")
	result = blankLinesRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// stripMarkup drops XML/HTML tags, for document formats whose extractors
// hand back raw markup.
func stripMarkup(content string) string {
	return xmlTagRe.ReplaceAllString(content, " ")
}

package output

import (
	"fmt"
	"strings"

	"github.com/vidlinks/vidlinks/internal/links"
)

// MarkdownFormatter renders results as a markdown table.
type MarkdownFormatter struct{}

// FormatResult renders a result as Markdown with download links.
func (f *MarkdownFormatter) FormatResult(result *links.VideoResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(result.Title)))
	if result.Thumbnail != "" {
		sb.WriteString(fmt.Sprintf("![thumbnail](%s)\n\n", result.Thumbnail))
	}
	sb.WriteString("| Type | Itag | Quality | Details | Size | Link |\n")
	sb.WriteString("|------|------|---------|---------|------|------|\n")

	for _, r := range rows(result) {
		link := "-"
		if r.URL != "-" {
			link = fmt.Sprintf("[download](%s)", r.URL)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			escapeMarkdownCell(r.Kind),
			r.Itag,
			escapeMarkdownCell(r.Quality),
			escapeMarkdownCell(r.Detail),
			r.Size,
			link,
		))
	}

	sb.WriteString("\n")
	for _, line := range summaryLines(result) {
		sb.WriteString("- ")
		sb.WriteString(escapeMarkdownCell(line))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}

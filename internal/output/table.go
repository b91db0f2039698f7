package output

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/vidlinks/vidlinks/internal/links"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct {
	// ShowURLs adds the stream URL column. URLs are long and off by default.
	ShowURLs bool
}

// FormatResult renders a result as a table followed by a summary.
func (f *TableFormatter) FormatResult(result *links.VideoResult) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.SetTitle(result.Title)

	header := table.Row{"Type", "Itag", "Quality", "Details", "Size"}
	if f.ShowURLs {
		header = append(header, "URL")
	}
	t.AppendHeader(header)

	for _, r := range rows(result) {
		line := table.Row{r.Kind, r.Itag, r.Quality, r.Detail, r.Size}
		if f.ShowURLs {
			line = append(line, r.URL)
		}
		t.AppendRow(line)
	}

	if len(result.Videos)+len(result.Audios) == 0 {
		t.AppendFooter(table.Row{"", "", "no usable formats", "", ""})
	}

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	for _, line := range summaryLines(result) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

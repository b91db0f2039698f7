// Package output renders resolved video links for the command line.
package output

import (
	"fmt"
	"strings"

	"github.com/vidlinks/vidlinks/internal/links"
)

// Format names a rendering.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formatter renders one resolution result.
type Formatter interface {
	FormatResult(result *links.VideoResult) (string, error)
}

type registration struct {
	format    Format
	aliases   []string
	extension string
	build     func() Formatter
}

// registry is ordered; the first entry is the default.
var registry = []registration{
	{FormatTable, nil, "txt", func() Formatter { return &TableFormatter{} }},
	{FormatJSON, nil, "json", func() Formatter { return &JSONFormatter{Indent: true} }},
	{FormatYAML, []string{"yml"}, "yaml", func() Formatter { return &YAMLFormatter{} }},
	{FormatMarkdown, []string{"md"}, "md", func() Formatter { return &MarkdownFormatter{} }},
}

func lookup(f Format) registration {
	for _, reg := range registry {
		if reg.format == f {
			return reg
		}
	}
	return registry[0]
}

// Names lists the accepted format names joined for flag help, e.g.
// "table|json|yaml|markdown".
func Names() string {
	names := make([]string, 0, len(registry))
	for _, reg := range registry {
		names = append(names, string(reg.format))
	}
	return strings.Join(names, "|")
}

// ParseFormat accepts a format name or alias, case-insensitively. Empty
// selects the table.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return registry[0].format, nil
	}
	for _, reg := range registry {
		if normalized == string(reg.format) {
			return reg.format, nil
		}
		for _, alias := range reg.aliases {
			if normalized == alias {
				return reg.format, nil
			}
		}
	}
	return "", fmt.Errorf("unsupported output format %q (want %s)", value, Names())
}

// Extension is the file extension used when writing f into a directory.
func (f Format) Extension() string {
	return lookup(f).extension
}

// NewFormatter returns a formatter for f. Unknown formats render as a table.
func NewFormatter(f Format) Formatter {
	return lookup(f).build()
}

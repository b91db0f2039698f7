package output

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vidlinks/vidlinks/internal/links"
)

// JSONFormatter renders a result as the same object the API returns under
// data. Signed URLs keep their literal ampersands.
type JSONFormatter struct {
	Indent bool
}

// FormatResult implements Formatter.
func (f *JSONFormatter) FormatResult(result *links.VideoResult) (string, error) {
	if result == nil {
		return "", nil
	}
	return encodeJSON(result, f.Indent)
}

// MarshalJSON encodes v indented, without HTML escaping.
func MarshalJSON(v any) (string, error) {
	return encodeJSON(v, true)
}

func encodeJSON(v any, indent bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// YAMLFormatter renders a result as YAML.
type YAMLFormatter struct{}

// FormatResult implements Formatter.
func (f *YAMLFormatter) FormatResult(result *links.VideoResult) (string, error) {
	if result == nil {
		return "", nil
	}
	return MarshalYAML(result)
}

// MarshalYAML encodes v with two-space indentation.
func MarshalYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

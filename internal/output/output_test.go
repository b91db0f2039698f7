package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vidlinks/vidlinks/internal/formats"
	"github.com/vidlinks/vidlinks/internal/links"
)

func sampleResult() *links.VideoResult {
	return &links.VideoResult{
		Title:      "Launch | Recap",
		Thumbnail:  "https://i.ytimg.com/vi/abc/maxres.jpg",
		Duration:   212,
		Author:     "Channel",
		UploadDate: "2024-05-01",
		ViewCount:  1234,
		Videos: []formats.Format{{
			Itag:          401,
			URL:           "https://cdn.example/401",
			Container:     "mp4",
			QualityLabel:  "2160p",
			Width:         3840,
			Height:        2160,
			FPS:           30,
			ContentLength: "2097152",
			HasURL:        true,
			HasVideo:      true,
		}},
		Audios: []formats.Format{{
			Itag:            140,
			Container:       "m4a",
			Codecs:          "mp4a.40.2",
			Bitrate:         128000,
			AudioSampleRate: "44100",
			HasAudio:        true,
		}},
		Stats: formats.Stats{
			TotalFormatsOriginal: 10,
			ReturnedFormats:      2,
			OptimizationRate:     "80%",
			HighestQuality:       "2160p",
			TotalSize:            2097152,
		},
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatTable,
		"table":    FormatTable,
		"JSON":     FormatJSON,
		" yml ":    FormatYAML,
		"markdown": FormatMarkdown,
		"md":       FormatMarkdown,
	}
	for input, want := range cases {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseFormat("csv")
	require.Error(t, err)
}

func TestFormatExtensionAndNames(t *testing.T) {
	assert.Equal(t, "txt", FormatTable.Extension())
	assert.Equal(t, "json", FormatJSON.Extension())
	assert.Equal(t, "yaml", FormatYAML.Extension())
	assert.Equal(t, "md", FormatMarkdown.Extension())
	assert.Equal(t, "table|json|yaml|markdown", Names())
}

func TestNewFormatterTypes(t *testing.T) {
	assert.IsType(t, &TableFormatter{}, NewFormatter(FormatTable))
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML))
	assert.IsType(t, &MarkdownFormatter{}, NewFormatter(FormatMarkdown))
}

func TestTableFormatter(t *testing.T) {
	out, err := (&TableFormatter{}).FormatResult(sampleResult())
	require.NoError(t, err)

	assert.Contains(t, out, "Launch | Recap")
	assert.Contains(t, out, "2160p")
	assert.Contains(t, out, "3840x2160")
	assert.Contains(t, out, "128 kbps")
	assert.Contains(t, out, "2.0 MiB")
	assert.Contains(t, out, "Duration: 3m32s")
	assert.Contains(t, out, "2 of 10 kept (80% reduction)")
	assert.NotContains(t, out, "https://cdn.example/401")

	withURLs, err := (&TableFormatter{ShowURLs: true}).FormatResult(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, withURLs, "https://cdn.example/401")
}

func TestTableFormatterEmpty(t *testing.T) {
	result := sampleResult()
	result.Videos = nil
	result.Audios = nil

	out, err := (&TableFormatter{}).FormatResult(result)
	require.NoError(t, err)
	assert.Contains(t, out, "no usable formats")
	assert.NotContains(t, out, "NO USABLE FORMATS")
}

func TestJSONFormatterMatchesAPIShape(t *testing.T) {
	out, err := (&JSONFormatter{}).FormatResult(sampleResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Launch | Recap", decoded["title"])
	assert.Len(t, decoded["videos"], 1)
	assert.Len(t, decoded["audios"], 1)
	assert.Contains(t, decoded, "stats")
}

func TestJSONFormatterKeepsAmpersands(t *testing.T) {
	result := sampleResult()
	result.Videos[0].URL = "https://cdn.example/401?expire=1&sig=abc"

	out, err := (&JSONFormatter{}).FormatResult(result)
	require.NoError(t, err)
	assert.Contains(t, out, "expire=1&sig=abc")
	assert.NotContains(t, out, `\u0026`)
}

func TestMarshalYAMLUsesTwoSpaceIndent(t *testing.T) {
	out, err := MarshalYAML(map[string]any{"server": map[string]int{"port": 8080}})
	require.NoError(t, err)
	assert.Equal(t, "server:\n  port: 8080\n", out)
}

func TestYAMLFormatter(t *testing.T) {
	out, err := (&YAMLFormatter{}).FormatResult(sampleResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Channel", decoded["author"])
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := (&MarkdownFormatter{}).FormatResult(sampleResult())
	require.NoError(t, err)

	assert.Contains(t, out, "## Launch \\| Recap")
	assert.Contains(t, out, "[download](https://cdn.example/401)")
	assert.Contains(t, out, "| audio | 140 |")
}

func TestFormattersHandleNil(t *testing.T) {
	for _, f := range []Format{FormatTable, FormatJSON, FormatYAML, FormatMarkdown} {
		out, err := NewFormatter(f).FormatResult(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "-", formatSize("not-a-number"))
}

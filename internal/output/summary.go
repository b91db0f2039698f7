package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vidlinks/vidlinks/internal/formats"
	"github.com/vidlinks/vidlinks/internal/links"
)

// row is one format flattened for tabular output.
type row struct {
	Kind    string
	Itag    string
	Quality string
	Detail  string
	Size    string
	URL     string
}

func rows(result *links.VideoResult) []row {
	out := make([]row, 0, len(result.Videos)+len(result.Audios))
	for _, f := range result.Videos {
		out = append(out, row{
			Kind:    kindLabel(f),
			Itag:    strconv.Itoa(f.Itag),
			Quality: f.QualityLabel,
			Detail:  videoDetail(f),
			Size:    formatSize(f.ContentLength),
			URL:     urlLabel(f),
		})
	}
	for _, f := range result.Audios {
		out = append(out, row{
			Kind:    kindLabel(f),
			Itag:    strconv.Itoa(f.Itag),
			Quality: formatBitrate(f.Bitrate),
			Detail:  audioDetail(f),
			Size:    formatSize(f.ContentLength),
			URL:     urlLabel(f),
		})
	}
	return out
}

func kindLabel(f formats.Format) string {
	switch {
	case f.HasVideo && f.HasAudio:
		return "video+audio"
	case f.HasVideo:
		return "video"
	default:
		return "audio"
	}
}

func videoDetail(f formats.Format) string {
	parts := []string{f.Container}
	if f.Width > 0 && f.Height > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", f.Width, f.Height))
	}
	if f.FPS > 0 {
		parts = append(parts, fmt.Sprintf("%dfps", f.FPS))
	}
	return strings.Join(parts, " ")
}

func audioDetail(f formats.Format) string {
	parts := []string{f.Container}
	if f.Codecs != "" {
		parts = append(parts, f.Codecs)
	}
	if f.AudioSampleRate != "" {
		parts = append(parts, f.AudioSampleRate+"Hz")
	}
	return strings.Join(parts, " ")
}

func urlLabel(f formats.Format) string {
	if !f.HasURL {
		return "-"
	}
	return f.URL
}

func formatBitrate(bps int) string {
	if bps <= 0 {
		return "-"
	}
	if bps >= 1_000_000 {
		return fmt.Sprintf("%.1f Mbps", float64(bps)/1_000_000)
	}
	return fmt.Sprintf("%d kbps", bps/1000)
}

func formatSize(contentLength string) string {
	n, err := strconv.ParseInt(contentLength, 10, 64)
	if err != nil || n <= 0 {
		return "-"
	}
	return formatBytes(n)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatDuration(seconds int64) string {
	return (time.Duration(seconds) * time.Second).String()
}

func summaryLines(result *links.VideoResult) []string {
	s := result.Stats
	lines := []string{
		fmt.Sprintf("Author: %s", result.Author),
		fmt.Sprintf("Duration: %s", formatDuration(result.Duration)),
		fmt.Sprintf("Views: %d", result.ViewCount),
		fmt.Sprintf("Formats: %d of %d kept (%s reduction), highest %s",
			s.ReturnedFormats, s.TotalFormatsOriginal, s.OptimizationRate, s.HighestQuality),
	}
	if result.UploadDate != "" {
		lines = append(lines, fmt.Sprintf("Uploaded: %s", result.UploadDate))
	}
	if s.TotalSize > 0 {
		lines = append(lines, fmt.Sprintf("Total size: %s", formatBytes(s.TotalSize)))
	}
	return lines
}

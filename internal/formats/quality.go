package formats

import (
	"regexp"
	"strconv"
)

// AudioOnlyLabel is the quality label given to every audio-only format.
const AudioOnlyLabel = "audio-only"

// UnknownLabel is used when no label can be derived.
const UnknownLabel = "unknown"

var itagLabels = map[int]string{
	313: "2160p", 401: "2160p",
	271: "1440p", 400: "1440p",
	137: "1080p", 248: "1080p", 399: "1080p",
	136: "720p", 247: "720p", 398: "720p",
	135: "480p",
	134: "360p",
	133: "240p",
	160: "144p",
}

var resolutionPattern = regexp.MustCompile(`(\d+)p`)

// QualityLabel derives the display label for a video-bearing format: the
// source label when present, then the height, then the itag table.
func QualityLabel(raw RawFormat) string {
	if raw.QualityLabel != "" {
		return raw.QualityLabel
	}
	if raw.Height > 0 {
		return strconv.Itoa(raw.Height) + "p"
	}
	if label, ok := itagLabels[raw.Itag]; ok {
		return label
	}
	return UnknownLabel
}

// LabelForItag returns the static label for a known itag.
func LabelForItag(itag int) (string, bool) {
	label, ok := itagLabels[itag]
	return label, ok
}

// Resolution extracts the numeric resolution used for ranking videos.
func Resolution(f Format) int {
	if m := resolutionPattern.FindStringSubmatch(f.QualityLabel); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return f.Height
}

package formats

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Select partitions raw formats, ranks them and narrows the result to at most
// one 4K mp4, one 1080p mp4, one AAC-family audio and one MP3-family audio.
// The output depends only on the input order and contents.
func Select(raw []RawFormat) Selection {
	videos, audios := Partition(raw)

	targetVideos := make([]Format, 0, 2)
	if f, ok := bestByBitrate(videos, func(f Format) bool {
		return strings.Contains(f.QualityLabel, "2160p") && f.Container == "mp4"
	}); ok {
		targetVideos = append(targetVideos, f)
	}
	if f, ok := bestByBitrate(videos, func(f Format) bool {
		return strings.Contains(f.QualityLabel, "1080p") && f.Container == "mp4"
	}); ok {
		targetVideos = append(targetVideos, f)
	}

	targetAudios := make([]Format, 0, 2)
	if f, ok := firstTier(audios, isM4A, isAAC); ok {
		targetAudios = append(targetAudios, f)
	}
	if f, ok := firstTier(audios, isMP3, isOpusOrWebM); ok {
		targetAudios = append(targetAudios, f)
	}

	targetVideos = withURL(targetVideos)
	targetAudios = withURL(targetAudios)

	return Selection{
		Videos: targetVideos,
		Audios: targetAudios,
		Stats:  BuildStats(raw, targetVideos, targetAudios),
	}
}

// Partition normalizes raw formats into ranked videos (combined first, then
// video-only, sorted by resolution) and audios (sorted by bitrate). Formats
// reporting neither audio nor video are ignored.
func Partition(raw []RawFormat) (videos, audios []Format) {
	var combined, videoOnly []Format
	for _, r := range raw {
		switch {
		case r.HasAudio && r.HasVideo:
			combined = append(combined, normalizeVideo(r))
		case r.HasVideo:
			videoOnly = append(videoOnly, normalizeVideo(r))
		case r.HasAudio:
			audios = append(audios, normalizeAudio(r))
		}
	}

	videos = append(combined, videoOnly...)
	sort.SliceStable(videos, func(i, j int) bool {
		return Resolution(videos[i]) > Resolution(videos[j])
	})
	sort.SliceStable(audios, func(i, j int) bool {
		return audios[i].Bitrate > audios[j].Bitrate
	})
	return videos, audios
}

func normalizeVideo(r RawFormat) Format {
	return Format{
		Itag:          r.Itag,
		URL:           r.URL,
		MimeType:      r.MimeType,
		Container:     r.Container,
		Codecs:        r.Codecs,
		Bitrate:       r.Bitrate,
		QualityLabel:  QualityLabel(r),
		ContentLength: r.ContentLength,
		HasURL:        r.URL != "",
		HasAudio:      r.HasAudio,
		HasVideo:      true,
		Width:         r.Width,
		Height:        r.Height,
		FPS:           r.FPS,
	}
}

func normalizeAudio(r RawFormat) Format {
	bitrate := r.Bitrate
	if bitrate == 0 {
		bitrate = r.AudioBitrate
	}
	return Format{
		Itag:            r.Itag,
		URL:             r.URL,
		MimeType:        r.MimeType,
		Container:       r.Container,
		Codecs:          r.Codecs,
		Bitrate:         bitrate,
		QualityLabel:    AudioOnlyLabel,
		ContentLength:   r.ContentLength,
		HasURL:          r.URL != "",
		HasAudio:        true,
		HasVideo:        false,
		AudioSampleRate: r.AudioSampleRate,
		AudioChannels:   r.AudioChannels,
	}
}

// bestByBitrate returns the highest-bitrate match. Ties keep the earlier entry.
func bestByBitrate(list []Format, match func(Format) bool) (Format, bool) {
	var (
		best  Format
		found bool
	)
	for _, f := range list {
		if !match(f) {
			continue
		}
		if !found || f.Bitrate > best.Bitrate {
			best = f
			found = true
		}
	}
	return best, found
}

// firstTier returns the best match of the first predicate that matches anything.
func firstTier(list []Format, tiers ...func(Format) bool) (Format, bool) {
	for _, match := range tiers {
		if f, ok := bestByBitrate(list, match); ok {
			return f, true
		}
	}
	return Format{}, false
}

func isM4A(f Format) bool { return f.Container == "m4a" }

func isAAC(f Format) bool {
	return strings.Contains(strings.ToLower(f.Codecs), "aac") || strings.Contains(f.MimeType, "mp4a")
}

func isMP3(f Format) bool { return f.Container == "mp3" }

func isOpusOrWebM(f Format) bool {
	return strings.Contains(strings.ToLower(f.Codecs), "opus") || f.Container == "webm"
}

func withURL(list []Format) []Format {
	out := list[:0]
	for _, f := range list {
		if f.URL != "" {
			out = append(out, f)
		}
	}
	return out
}

// OptimizationRate reports how much of the original list was discarded.
func OptimizationRate(original, returned int) string {
	if original == 0 {
		return "0%"
	}
	rate := math.Round((1 - float64(returned)/float64(original)) * 100)
	return fmt.Sprintf("%d%%", int(rate))
}

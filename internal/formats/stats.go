package formats

import (
	"net/url"
	"strconv"
)

// URLQualityScore flags whether the first stream URL carries the signed
// parameters a player needs. Each component is 0 or 1.
type URLQualityScore struct {
	N     int `json:"n" yaml:"n"`
	Pot   int `json:"pot" yaml:"pot"`
	Sig   int `json:"sig" yaml:"sig"`
	Total int `json:"total" yaml:"total"`
}

// BuildStats summarizes a selection against the raw input.
func BuildStats(raw []RawFormat, videos, audios []Format) Stats {
	returned := len(videos) + len(audios)
	highest := "N/A"
	if len(videos) > 0 {
		highest = videos[0].QualityLabel
	}

	stats := Stats{
		TotalFormatsOriginal: len(raw),
		ReturnedFormats:      returned,
		AudioFormats:         len(audios),
		VideoFormats:         len(videos),
		OptimizationRate:     OptimizationRate(len(raw), returned),
		HighestQuality:       highest,
		SupportedContainers:  SupportedContainers(videos, audios),
		TotalSize:            TotalSize(videos, audios),
	}
	if len(raw) > 0 {
		stats.URLQuality = ScoreURL(raw[0].URL)
	}
	return stats
}

// ScoreURL inspects the n, pot and sig query parameters of a stream URL.
func ScoreURL(raw string) URLQualityScore {
	var score URLQualityScore
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return score
	}
	q := u.Query()
	if len(q.Get("n")) > 10 {
		score.N = 1
	}
	if len(q.Get("pot")) > 200 {
		score.Pot = 1
	}
	if len(q.Get("sig")) > 50 {
		score.Sig = 1
	}
	score.Total = score.N + score.Pot + score.Sig
	return score
}

// SupportedContainers lists distinct containers in first-seen order, videos first.
func SupportedContainers(videos, audios []Format) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range [][]Format{videos, audios} {
		for _, f := range list {
			if _, ok := seen[f.Container]; ok {
				continue
			}
			seen[f.Container] = struct{}{}
			out = append(out, f.Container)
		}
	}
	return out
}

// TotalSize sums content lengths. Unparsable lengths count as zero.
func TotalSize(videos, audios []Format) int64 {
	var total int64
	for _, list := range [][]Format{videos, audios} {
		for _, f := range list {
			if n, err := strconv.ParseInt(f.ContentLength, 10, 64); err == nil {
				total += n
			}
		}
	}
	return total
}

// GroupByContainer buckets videos into mp4/webm and audios into m4a, with
// everything else in Other.
func GroupByContainer(videos, audios []Format) Groups {
	var g Groups
	for _, v := range videos {
		switch v.Container {
		case "mp4":
			g.MP4 = append(g.MP4, v)
		case "webm":
			g.WebM = append(g.WebM, v)
		default:
			g.Other = append(g.Other, v)
		}
	}
	for _, a := range audios {
		if a.Container == "m4a" {
			g.M4A = append(g.M4A, a)
		} else {
			g.Other = append(g.Other, a)
		}
	}
	return g
}

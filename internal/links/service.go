// Package links resolves a video URL into the selected download formats.
package links

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/vidlinks/vidlinks/internal/errors"
	"github.com/vidlinks/vidlinks/internal/extractor"
	"github.com/vidlinks/vidlinks/internal/formats"
	"github.com/vidlinks/vidlinks/internal/metrics"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/timeout"
)

// UnknownAuthor is reported when the upstream omits the channel name.
const UnknownAuthor = "Unknown"

// VideoResult is the payload of a successful resolution.
type VideoResult struct {
	Title      string           `json:"title" yaml:"title"`
	Thumbnail  string           `json:"thumbnail" yaml:"thumbnail"`
	Duration   int64            `json:"duration" yaml:"duration"`
	Author     string           `json:"author" yaml:"author"`
	UploadDate string           `json:"uploadDate,omitempty" yaml:"upload_date,omitempty"`
	ViewCount  int64            `json:"viewCount" yaml:"view_count"`
	Videos     []formats.Format `json:"videos" yaml:"videos"`
	Audios     []formats.Format `json:"audios" yaml:"audios"`
	Stats      formats.Stats    `json:"stats" yaml:"stats"`
}

// Options configures a Service.
type Options struct {
	Policy timeout.Policy
	// ValidateHost rejects URLs outside the supported hosts before any
	// upstream call.
	ValidateHost bool
}

// Service runs the collaborator under the timeout policy and narrows its
// formats.
type Service struct {
	fetcher      extractor.Fetcher
	policy       timeout.Policy
	validateHost bool
}

// NewService builds a Service around fetcher.
func NewService(fetcher extractor.Fetcher, opts Options) *Service {
	return &Service{
		fetcher:      fetcher,
		policy:       opts.Policy,
		validateHost: opts.ValidateHost,
	}
}

// Policy reports the timeout policy in force.
func (s *Service) Policy() timeout.Policy { return s.policy }

// Resolve fetches videoURL and returns the selected formats. Failures are
// returned as classified *errors.Outcome values.
func (s *Service) Resolve(ctx context.Context, videoURL string) (*VideoResult, error) {
	if s.validateHost && !extractor.ValidateURL(videoURL) {
		return nil, apperrors.InvalidURLOutcome()
	}

	start := time.Now()
	info, err := timeout.RunWithRetry(ctx, s.policy, func(ctx context.Context) (*extractor.VideoInfo, error) {
		return s.fetcher.FetchVideoInfo(ctx, videoURL)
	})
	metrics.RecordExtraction(time.Since(start), err == nil)
	if err != nil {
		var te *timeout.Error
		if stderrors.As(err, &te) {
			metrics.RecordExtractionTimeout(te.Attempts)
		}
		outcome := apperrors.Classify(err)
		if observability.ServerLogger != nil {
			observability.ServerLogger.Debug("Video resolution failed",
				zap.String("error_code", string(outcome.Kind)),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
		}
		return nil, outcome
	}
	if info == nil {
		return nil, apperrors.VideoUnavailableOutcome("video unavailable: no information returned")
	}

	selection := formats.Select(info.Formats)
	metrics.SetSelectedFormats(len(selection.Videos), len(selection.Audios))

	return buildResult(info.Metadata, selection), nil
}

func buildResult(md extractor.Metadata, sel formats.Selection) *VideoResult {
	author := md.Author
	if author == "" {
		author = UnknownAuthor
	}
	var thumbnail string
	if n := len(md.Thumbnails); n > 0 {
		thumbnail = md.Thumbnails[n-1].URL
	}
	videos := sel.Videos
	if videos == nil {
		videos = []formats.Format{}
	}
	audios := sel.Audios
	if audios == nil {
		audios = []formats.Format{}
	}
	return &VideoResult{
		Title:      md.Title,
		Thumbnail:  thumbnail,
		Duration:   int64(md.Duration / time.Second),
		Author:     author,
		UploadDate: md.UploadDate,
		ViewCount:  md.ViewCount,
		Videos:     videos,
		Audios:     audios,
		Stats:      sel.Stats,
	}
}

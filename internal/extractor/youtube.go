package extractor

import (
	"context"
	stderrors "errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/formats"
	"github.com/vidlinks/vidlinks/internal/observability"
)

// YouTubeOptions configures the YouTube fetcher.
type YouTubeOptions struct {
	HTTPTimeout time.Duration
	// ResolveCiphered asks the library to decipher formats that arrive
	// without a direct URL.
	ResolveCiphered bool
}

// YouTube fetches metadata and formats with github.com/kkdai/youtube.
type YouTube struct {
	client          *youtube.Client
	resolveCiphered bool
}

// NewYouTube builds a YouTube fetcher.
func NewYouTube(opts YouTubeOptions) *YouTube {
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 30 * time.Second
	}
	return &YouTube{
		client:          &youtube.Client{HTTPClient: &http.Client{Timeout: opts.HTTPTimeout}},
		resolveCiphered: opts.ResolveCiphered,
	}
}

// FetchVideoInfo implements Fetcher.
func (y *YouTube) FetchVideoInfo(ctx context.Context, videoURL string) (*VideoInfo, error) {
	video, err := y.client.GetVideoContext(ctx, videoURL)
	if err != nil {
		return nil, translateError(err)
	}

	info := &VideoInfo{
		Metadata: Metadata{
			ID:        video.ID,
			Title:     video.Title,
			Author:    video.Author,
			Duration:  video.Duration,
			ViewCount: int64(video.Views),
		},
		Formats: make([]formats.RawFormat, 0, len(video.Formats)),
	}
	if !video.PublishDate.IsZero() {
		info.Metadata.UploadDate = video.PublishDate.Format("2006-01-02")
	}
	for _, th := range video.Thumbnails {
		info.Metadata.Thumbnails = append(info.Metadata.Thumbnails, Thumbnail{
			URL:    th.URL,
			Width:  int(th.Width),
			Height: int(th.Height),
		})
	}

	for i := range video.Formats {
		f := &video.Formats[i]
		raw := ConvertFormat(f)
		if raw.URL == "" && y.resolveCiphered && f.Cipher != "" {
			streamURL, err := y.client.GetStreamURLContext(ctx, video, f)
			if err != nil {
				if observability.ServerLogger != nil {
					observability.ServerLogger.Debug("Stream URL resolution failed",
						zap.Int("itag", f.ItagNo),
						zap.Error(err))
				}
			} else {
				raw.URL = streamURL
			}
		}
		info.Formats = append(info.Formats, raw)
	}

	return info, nil
}

// ConvertFormat maps one library format onto the boundary view.
func ConvertFormat(f *youtube.Format) formats.RawFormat {
	mediaType, codecs := parseMimeType(f.MimeType)
	raw := formats.RawFormat{
		Itag:            f.ItagNo,
		URL:             f.URL,
		MimeType:        f.MimeType,
		Container:       containerFor(mediaType),
		Codecs:          codecs,
		Bitrate:         f.Bitrate,
		Width:           f.Width,
		Height:          f.Height,
		FPS:             f.FPS,
		QualityLabel:    f.QualityLabel,
		AudioSampleRate: f.AudioSampleRate,
		AudioChannels:   f.AudioChannels,
		HasVideo:        strings.HasPrefix(mediaType, "video/"),
	}
	if f.ContentLength > 0 {
		raw.ContentLength = fmt.Sprintf("%d", f.ContentLength)
	}
	if raw.Bitrate == 0 {
		raw.AudioBitrate = f.AverageBitrate
	}
	raw.HasAudio = strings.HasPrefix(mediaType, "audio/") || f.AudioChannels > 0
	return raw
}

func parseMimeType(value string) (mediaType, codecs string) {
	mt, params, err := mime.ParseMediaType(value)
	if err != nil {
		if i := strings.Index(value, ";"); i >= 0 {
			return strings.TrimSpace(value[:i]), ""
		}
		return strings.TrimSpace(value), ""
	}
	return mt, params["codecs"]
}

// containerFor names the container the way callers expect: audio/mp4 is m4a.
func containerFor(mediaType string) string {
	switch mediaType {
	case "audio/mp4":
		return "m4a"
	case "audio/mpeg":
		return "mp3"
	}
	if i := strings.Index(mediaType, "/"); i >= 0 {
		return mediaType[i+1:]
	}
	return mediaType
}

// translateError rewrites library sentinels into messages the error
// taxonomy recognizes.
func translateError(err error) error {
	var status youtube.ErrUnexpectedStatusCode
	switch {
	case stderrors.As(err, &status):
		return &UpstreamError{Op: "fetch video", Status: int(status), Err: err}
	case stderrors.Is(err, youtube.ErrLoginRequired):
		return fmt.Errorf("video is age restricted: %w", err)
	case stderrors.Is(err, youtube.ErrVideoPrivate):
		return fmt.Errorf("video is private: %w", err)
	case stderrors.Is(err, youtube.ErrInvalidCharactersInVideoID), stderrors.Is(err, youtube.ErrVideoIDMinLength):
		return fmt.Errorf("invalid video url: %w", err)
	case stderrors.Is(err, youtube.ErrNotPlayableInEmbed):
		return fmt.Errorf("video unavailable: %w", err)
	}
	return &UpstreamError{Op: "fetch video", Err: err}
}

package links

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vidlinks/vidlinks/internal/errors"
	"github.com/vidlinks/vidlinks/internal/extractor"
	"github.com/vidlinks/vidlinks/internal/formats"
	"github.com/vidlinks/vidlinks/internal/timeout"
)

const watchURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func sampleInfo() *extractor.VideoInfo {
	return &extractor.VideoInfo{
		Metadata: extractor.Metadata{
			Title:     "Sample",
			Duration:  212 * time.Second,
			ViewCount: 42,
			Thumbnails: []extractor.Thumbnail{
				{URL: "https://i.example/small.jpg"},
				{URL: "https://i.example/large.jpg"},
			},
		},
		Formats: []formats.RawFormat{
			{Itag: 401, URL: "https://cdn.example/401", Container: "mp4", HasVideo: true, HasAudio: true, Height: 2160, Bitrate: 9000},
			{Itag: 140, URL: "https://cdn.example/140", Container: "m4a", HasAudio: true, Bitrate: 128000},
		},
	}
}

func TestResolveSelectsFormats(t *testing.T) {
	svc := NewService(extractor.FetcherFunc(func(ctx context.Context, videoURL string) (*extractor.VideoInfo, error) {
		return sampleInfo(), nil
	}), Options{Policy: timeout.Policy{Timeout: time.Second}, ValidateHost: true})

	res, err := svc.Resolve(context.Background(), watchURL)
	require.NoError(t, err)

	assert.Equal(t, "Sample", res.Title)
	assert.Equal(t, UnknownAuthor, res.Author)
	assert.Equal(t, "https://i.example/large.jpg", res.Thumbnail)
	assert.Equal(t, int64(212), res.Duration)
	require.Len(t, res.Videos, 1)
	assert.Equal(t, 401, res.Videos[0].Itag)
	assert.Equal(t, "2160p", res.Videos[0].QualityLabel)
	require.Len(t, res.Audios, 1)
	assert.Equal(t, 140, res.Audios[0].Itag)
	assert.Equal(t, "2160p", res.Stats.HighestQuality)
}

func TestResolveRejectsForeignHost(t *testing.T) {
	called := false
	svc := NewService(extractor.FetcherFunc(func(ctx context.Context, videoURL string) (*extractor.VideoInfo, error) {
		called = true
		return sampleInfo(), nil
	}), Options{ValidateHost: true})

	_, err := svc.Resolve(context.Background(), "https://vimeo.com/1")
	var outcome *apperrors.Outcome
	require.ErrorAs(t, err, &outcome)
	assert.Equal(t, apperrors.KindInvalidURL, outcome.Kind)
	assert.False(t, called)
}

func TestResolveClassifiesTimeout(t *testing.T) {
	svc := NewService(extractor.FetcherFunc(func(ctx context.Context, videoURL string) (*extractor.VideoInfo, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), Options{Policy: timeout.Policy{Timeout: 20 * time.Millisecond, Retries: 1, Delay: time.Millisecond}})

	_, err := svc.Resolve(context.Background(), watchURL)
	var outcome *apperrors.Outcome
	require.ErrorAs(t, err, &outcome)
	assert.Equal(t, apperrors.KindTimeout, outcome.Kind)
	assert.Equal(t, 408, outcome.Status)
}

func TestResolveClassifiesUpstreamFailures(t *testing.T) {
	cases := []struct {
		err  error
		kind apperrors.Kind
	}{
		{stderrors.New("video is private"), apperrors.KindVideoUnavailable},
		{&extractor.UpstreamError{Op: "fetch video", Status: 403, Err: stderrors.New("denied")}, apperrors.KindForbidden},
		{stderrors.New("something odd"), apperrors.KindUnknown},
	}
	for _, tc := range cases {
		svc := NewService(extractor.FetcherFunc(func(ctx context.Context, videoURL string) (*extractor.VideoInfo, error) {
			return nil, tc.err
		}), Options{Policy: timeout.Policy{Timeout: time.Second}})

		_, err := svc.Resolve(context.Background(), watchURL)
		var outcome *apperrors.Outcome
		require.ErrorAs(t, err, &outcome)
		assert.Equal(t, tc.kind, outcome.Kind, tc.err.Error())
	}
}

func TestResolveEmptySelectionIsNotAnError(t *testing.T) {
	svc := NewService(extractor.FetcherFunc(func(ctx context.Context, videoURL string) (*extractor.VideoInfo, error) {
		return &extractor.VideoInfo{Metadata: extractor.Metadata{Title: "x", Author: "Chan"}}, nil
	}), Options{Policy: timeout.Policy{Timeout: time.Second}})

	res, err := svc.Resolve(context.Background(), watchURL)
	require.NoError(t, err)
	assert.Equal(t, "Chan", res.Author)
	assert.Empty(t, res.Videos)
	assert.NotNil(t, res.Videos)
	assert.Equal(t, "N/A", res.Stats.HighestQuality)
}

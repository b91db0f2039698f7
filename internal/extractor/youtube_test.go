package extractor

import (
	"fmt"
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertFormatVideoOnly(t *testing.T) {
	raw := ConvertFormat(&youtube.Format{
		ItagNo:        137,
		URL:           "https://cdn.example/137",
		MimeType:      `video/mp4; codecs="avc1.640028"`,
		Bitrate:       4000000,
		Width:         1920,
		Height:        1080,
		FPS:           30,
		QualityLabel:  "1080p",
		ContentLength: 12345,
	})

	assert.Equal(t, 137, raw.Itag)
	assert.Equal(t, "mp4", raw.Container)
	assert.Equal(t, "avc1.640028", raw.Codecs)
	assert.True(t, raw.HasVideo)
	assert.False(t, raw.HasAudio)
	assert.Equal(t, "12345", raw.ContentLength)
}

func TestConvertFormatCombinedAndAudio(t *testing.T) {
	combined := ConvertFormat(&youtube.Format{
		ItagNo:        18,
		MimeType:      `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
		AudioChannels: 2,
	})
	assert.True(t, combined.HasVideo)
	assert.True(t, combined.HasAudio)

	audio := ConvertFormat(&youtube.Format{
		ItagNo:          140,
		MimeType:        `audio/mp4; codecs="mp4a.40.2"`,
		AverageBitrate:  129000,
		AudioSampleRate: "44100",
		AudioChannels:   2,
	})
	assert.Equal(t, "m4a", audio.Container)
	assert.Equal(t, 129000, audio.AudioBitrate)
	assert.True(t, audio.HasAudio)
	assert.False(t, audio.HasVideo)

	opus := ConvertFormat(&youtube.Format{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`})
	assert.Equal(t, "webm", opus.Container)
	assert.Equal(t, "opus", opus.Codecs)
}

func TestTranslateError(t *testing.T) {
	err := translateError(youtube.ErrUnexpectedStatusCode(403))
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 403, upstream.HTTPStatus())

	assert.Contains(t, translateError(youtube.ErrLoginRequired).Error(), "age restricted")
	assert.Contains(t, translateError(fmt.Errorf("wrap: %w", youtube.ErrVideoPrivate)).Error(), "private")
	assert.Contains(t, translateError(youtube.ErrVideoIDMinLength).Error(), "invalid video url")
}

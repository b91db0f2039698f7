package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityLabel(t *testing.T) {
	cases := []struct {
		name string
		raw  RawFormat
		want string
	}{
		{name: "source label wins", raw: RawFormat{Itag: 137, QualityLabel: "1080p60", Height: 1080}, want: "1080p60"},
		{name: "height", raw: RawFormat{Itag: 999, Height: 720}, want: "720p"},
		{name: "itag table", raw: RawFormat{Itag: 137}, want: "1080p"},
		{name: "itag 4k", raw: RawFormat{Itag: 401}, want: "2160p"},
		{name: "unknown", raw: RawFormat{Itag: 5}, want: UnknownLabel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, QualityLabel(tc.raw))
		})
	}
}

func TestResolution(t *testing.T) {
	assert.Equal(t, 1080, Resolution(Format{QualityLabel: "1080p60"}))
	assert.Equal(t, 480, Resolution(Format{QualityLabel: "unknown", Height: 480}))
	assert.Equal(t, 0, Resolution(Format{QualityLabel: "unknown"}))
}

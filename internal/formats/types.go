// Package formats classifies raw stream descriptors from the extraction
// collaborator and narrows them to a small, quality-ranked target set.
package formats

// RawFormat is the boundary view of one stream descriptor returned by the
// extraction collaborator. Zero values mean the attribute was not reported.
// Only Itag and URL are expected on every record.
type RawFormat struct {
	Itag            int
	URL             string
	MimeType        string
	Container       string
	Codecs          string
	Bitrate         int
	AudioBitrate    int
	Width           int
	Height          int
	FPS             int
	QualityLabel    string
	ContentLength   string
	AudioSampleRate string
	AudioChannels   int
	HasAudio        bool
	HasVideo        bool
}

// Format is a normalized stream variant as returned to callers.
type Format struct {
	Itag          int    `json:"itag" yaml:"itag"`
	URL           string `json:"url" yaml:"url"`
	MimeType      string `json:"mimeType" yaml:"mime_type"`
	Container     string `json:"container" yaml:"container"`
	Codecs        string `json:"codecs,omitempty" yaml:"codecs,omitempty"`
	Bitrate       int    `json:"bitrate" yaml:"bitrate"`
	QualityLabel  string `json:"qualityLabel" yaml:"quality_label"`
	ContentLength string `json:"contentLength,omitempty" yaml:"content_length,omitempty"`
	HasURL        bool   `json:"hasUrl" yaml:"has_url"`
	HasAudio      bool   `json:"hasAudio" yaml:"has_audio"`
	HasVideo      bool   `json:"hasVideo" yaml:"has_video"`

	// Video-only attributes.
	Width  int `json:"width,omitempty" yaml:"width,omitempty"`
	Height int `json:"height,omitempty" yaml:"height,omitempty"`
	FPS    int `json:"fps,omitempty" yaml:"fps,omitempty"`

	// Audio-only attributes.
	AudioSampleRate string `json:"audioSampleRate,omitempty" yaml:"audio_sample_rate,omitempty"`
	AudioChannels   int    `json:"audioChannels,omitempty" yaml:"audio_channels,omitempty"`
}

// Stats summarizes one selection run.
type Stats struct {
	TotalFormatsOriginal int             `json:"totalFormatsOriginal" yaml:"total_formats_original"`
	ReturnedFormats      int             `json:"returnedFormats" yaml:"returned_formats"`
	AudioFormats         int             `json:"audioFormats" yaml:"audio_formats"`
	VideoFormats         int             `json:"videoFormats" yaml:"video_formats"`
	OptimizationRate     string          `json:"optimizationRate" yaml:"optimization_rate"`
	HighestQuality       string          `json:"highestQuality" yaml:"highest_quality"`
	SupportedContainers  []string        `json:"supportedContainers,omitempty" yaml:"supported_containers,omitempty"`
	TotalSize            int64           `json:"totalSize" yaml:"total_size"`
	URLQuality           URLQualityScore `json:"urlQualityScore" yaml:"url_quality_score"`
}

// Selection is the output of Select.
type Selection struct {
	Videos []Format
	Audios []Format
	Stats  Stats
}

// Groups buckets selected formats by container.
type Groups struct {
	MP4   []Format `json:"mp4"`
	WebM  []Format `json:"webm"`
	M4A   []Format `json:"m4a"`
	Other []Format `json:"other"`
}

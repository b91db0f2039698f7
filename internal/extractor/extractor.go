// Package extractor adapts the upstream video extraction library to the
// Fetcher contract used by the links service.
package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/vidlinks/vidlinks/internal/formats"
)

// Fetcher resolves a video URL into metadata and raw formats.
type Fetcher interface {
	FetchVideoInfo(ctx context.Context, videoURL string) (*VideoInfo, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, videoURL string) (*VideoInfo, error)

// FetchVideoInfo calls f.
func (f FetcherFunc) FetchVideoInfo(ctx context.Context, videoURL string) (*VideoInfo, error) {
	return f(ctx, videoURL)
}

// Thumbnail is one preview image.
type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

// Metadata describes the video itself.
type Metadata struct {
	ID         string
	Title      string
	Author     string
	UploadDate string
	Duration   time.Duration
	ViewCount  int64
	Thumbnails []Thumbnail
}

// VideoInfo is the collaborator's answer for one URL.
type VideoInfo struct {
	Metadata Metadata
	Formats  []formats.RawFormat
}

// UpstreamError carries an HTTP-like status from the upstream service.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus reports the upstream status, or 0.
func (e *UpstreamError) HTTPStatus() int { return e.Status }

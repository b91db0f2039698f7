package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vidlinks/vidlinks/internal/errors"
	"github.com/vidlinks/vidlinks/internal/links"
)

type resolverFunc func(ctx context.Context, videoURL string) (*links.VideoResult, error)

func (f resolverFunc) Resolve(ctx context.Context, videoURL string) (*links.VideoResult, error) {
	return f(ctx, videoURL)
}

func TestLinksHandlerSuccess(t *testing.T) {
	var got string
	h := LinksHandler(resolverFunc(func(ctx context.Context, videoURL string) (*links.VideoResult, error) {
		got = videoURL
		return &links.VideoResult{Title: "t", Author: "a"}, nil
	}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/getDownloadLinks?url=https%3A%2F%2Fyoutu.be%2Fabc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://youtu.be/abc", got)
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))

	var body struct {
		Status string             `json:"status"`
		Data   links.VideoResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "SUCCESS", body.Status)
	assert.Equal(t, "t", body.Data.Title)
}

func TestLinksHandlerClassifiedFailure(t *testing.T) {
	h := LinksHandler(resolverFunc(func(ctx context.Context, videoURL string) (*links.VideoResult, error) {
		return nil, apperrors.AgeRestrictedOutcome("video is age restricted")
	}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/getDownloadLinks?url=x", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ERROR", body["status"])
	assert.Equal(t, "AGE_RESTRICTED", body["errorCode"])
	assert.NotEmpty(t, body["timestamp"])
}

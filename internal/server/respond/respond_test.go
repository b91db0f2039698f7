package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessDisablesCaching(t *testing.T) {
	rec := httptest.NewRecorder()

	Success(rec, map[string]string{"title": "clip"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusSuccess, body.Status)
	assert.Equal(t, "clip", body.Data["title"])
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/getDownloadLinks", nil)

	MethodNotAllowed(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET", rec.Header().Get("Allow"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ERROR", body["status"])
	assert.Equal(t, "Method Not Allowed or Missing URL parameter", body["message"])
}

func TestJSONKeepsSignedURLsLiteral(t *testing.T) {
	rec := httptest.NewRecorder()

	JSON(rec, http.StatusOK, map[string]string{"url": "https://cdn.example/v?itag=18&sig=a<b"})

	assert.Contains(t, rec.Body.String(), "itag=18&sig=a<b")
}

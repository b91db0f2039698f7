// Package respond writes link endpoint responses.
package respond

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/vidlinks/vidlinks/internal/errors"
)

// StatusSuccess is the body status value for successful resolutions.
const StatusSuccess = "SUCCESS"

// SuccessBody wraps a successful payload.
type SuccessBody struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// NoCache marks a response as uncacheable.
func NoCache(h http.Header) {
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}

// Success writes data as a 200 success body.
func Success(w http.ResponseWriter, data any) {
	NoCache(w.Header())
	JSON(w, http.StatusOK, SuccessBody{Status: StatusSuccess, Data: data})
}

// Preflight answers a CORS preflight. Headers are expected to be set already.
func Preflight(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

// Error classifies err and writes the error body.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

// MethodNotAllowed rejects anything other than GET with a url parameter.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	apperrors.RespondWithEnvelope(w, r, apperrors.NewMethodNotAllowedError("Method Not Allowed or Missing URL parameter"))
}

// JSON writes v with status. HTML escaping is off so signed media URLs
// arrive byte-for-byte.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

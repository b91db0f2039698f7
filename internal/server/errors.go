package server

import (
	"net/http"

	apperrors "github.com/vidlinks/vidlinks/internal/errors"
	"github.com/vidlinks/vidlinks/internal/server/respond"
)

// routeNotFound answers any path outside the registered surface.
func routeNotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, apperrors.NewNotFoundError("The requested resource was not found"))
}

// routeMethodNotAllowed answers a known path hit with the wrong method. The
// links routes never get here; RequireURL rejects those first.
func routeMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
}

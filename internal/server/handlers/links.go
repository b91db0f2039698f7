package handlers

import (
	"context"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/vidlinks/vidlinks/internal/errors"
	"github.com/vidlinks/vidlinks/internal/links"
	"github.com/vidlinks/vidlinks/internal/metrics"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/server/guard"
	"github.com/vidlinks/vidlinks/internal/server/respond"
)

// Resolver is the part of links.Service the handler needs.
type Resolver interface {
	Resolve(ctx context.Context, videoURL string) (*links.VideoResult, error)
}

// LinksHandler answers the download-links endpoint. The guard chain has
// already checked origin, method, rate limit and key.
func LinksHandler(resolver Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoURL := r.URL.Query().Get(guard.URLParam)

		result, err := resolver.Resolve(r.Context(), videoURL)
		if err != nil {
			outcome := "error"
			var o *apperrors.Outcome
			if stderrors.As(err, &o) {
				outcome = string(o.Kind)
			}
			metrics.RecordLinkRequest(outcome)
			respond.Error(w, r, err)
			return
		}

		metrics.RecordLinkRequest("success")
		if observability.ServerLogger != nil {
			observability.ServerLogger.Info("Resolved download links",
				zap.String("title", result.Title),
				zap.Int("videos", len(result.Videos)),
				zap.Int("audios", len(result.Audios)),
				zap.String("optimization_rate", result.Stats.OptimizationRate))
		}
		respond.Success(w, result)
	}
}

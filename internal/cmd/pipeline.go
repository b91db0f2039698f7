package cmd

import (
	"github.com/vidlinks/vidlinks/internal/config"
	"github.com/vidlinks/vidlinks/internal/extractor"
	"github.com/vidlinks/vidlinks/internal/links"
)

// newUpstream builds the raw upstream fetcher. Tests replace it.
var newUpstream = func(cfg *config.Config) extractor.Fetcher {
	return extractor.NewYouTube(extractor.YouTubeOptions{
		HTTPTimeout:     cfg.Extractor.HTTPTimeout,
		ResolveCiphered: cfg.Extractor.ResolveCiphered,
	})
}

// buildFetcher layers throttling and coalescing over the upstream client.
// Coalescing sits outermost so duplicate requests never spend a throttle
// token.
func buildFetcher(cfg *config.Config) extractor.Fetcher {
	upstream := newUpstream(cfg)
	throttled := extractor.NewThrottled(upstream, cfg.Extractor.UpstreamRPS, cfg.Extractor.UpstreamBurst)
	return extractor.NewCoalescing(throttled, cfg.Extractor.CoalesceWait)
}

func buildService(cfg *config.Config) *links.Service {
	return links.NewService(buildFetcher(cfg), links.Options{
		Policy:       cfg.Policy(),
		ValidateHost: cfg.Extractor.ValidateHost,
	})
}

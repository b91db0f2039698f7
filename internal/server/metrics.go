package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/vidlinks/vidlinks/internal/errors"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/server/respond"
)

const (
	metricsScrapeTimeout = 5 * time.Second
	prometheusTextType   = "text/plain; version=0.0.4"
)

// metricsTransport carries scrapes to the exporter listener.
var metricsTransport http.RoundTripper = http.DefaultTransport

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	MetricsHandler(s.opts.MetricsPort)(w, r)
}

// MetricsHandler serves /metrics on the main listener by reverse proxying the
// exporter. fallbackPort applies when the exporter never reported its bound
// port.
func MetricsHandler(fallbackPort int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if observability.PrometheusExporter == nil {
			respond.Error(w, r, apperrors.NewServiceUnavailableError("Metrics exporter not initialized"))
			return
		}

		target := exporterURL(fallbackPort)
		ctx, cancel := context.WithTimeout(r.Context(), metricsScrapeTimeout)
		defer cancel()

		proxy := &httputil.ReverseProxy{
			Transport: metricsTransport,
			Rewrite: func(pr *httputil.ProxyRequest) {
				pr.SetURL(target)
				pr.Out.URL.Path = "/metrics"
				pr.Out.URL.RawPath = ""
			},
			ModifyResponse: func(resp *http.Response) error {
				if resp.Header.Get("Content-Type") == "" {
					resp.Header.Set("Content-Type", prometheusTextType)
				}
				return nil
			},
			ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
				if observability.ServerLogger != nil {
					observability.ServerLogger.Warn("Metrics scrape failed",
						zap.String("target", target.String()),
						zap.Error(err))
				}
				respond.Error(w, r, apperrors.WrapExternalService(r.Context(), err, "Prometheus exporter unavailable"))
			},
		}
		proxy.ServeHTTP(w, r.WithContext(ctx))
	}
}

func exporterURL(fallbackPort int) *url.URL {
	port := observability.GetMetricsPort()
	if port == 0 {
		port = fallbackPort
	}
	if port == 0 {
		port = 9090
	}
	return &url.URL{Scheme: "http", Host: fmt.Sprintf("127.0.0.1:%d", port)}
}

package observability

import (
	"fmt"
	"net"
	"strconv"

	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/fulmenhq/gofulmen/telemetry/exporters"
)

// fallbackMetricsPort is reported when an ephemeral bind cannot be resolved.
const fallbackMetricsPort = 9090

var (
	// TelemetrySystem receives every counter, gauge and histogram the
	// service emits. Nil disables emission.
	TelemetrySystem *telemetry.System

	// PrometheusExporter serves the scrape endpoint that /metrics proxies.
	PrometheusExporter *exporters.PrometheusExporter

	metricsPort int
)

// MetricsOptions configures the Prometheus exporter.
type MetricsOptions struct {
	// Service names the emitter; it is the namespace when Namespace is empty.
	Service   string
	Namespace string
	// Port for the exporter listener. Zero or negative picks a free port.
	Port int
}

func (o MetricsOptions) namespace() string {
	if o.Namespace != "" {
		return o.Namespace
	}
	return o.Service
}

// InitMetrics starts the Prometheus exporter and points TelemetrySystem at
// it. Series such as errors_total register lazily on first emission.
func InitMetrics(opts MetricsOptions) error {
	port := opts.Port
	if port < 0 {
		port = 0
	}
	metricsPort = port

	exporter := exporters.NewPrometheusExporter(opts.namespace(), fmt.Sprintf(":%d", port))
	if err := exporter.Start(); err != nil {
		return fmt.Errorf("start prometheus exporter: %w", err)
	}

	if bound, err := resolvePort(exporter.GetAddr()); err == nil {
		metricsPort = bound
	} else if port == 0 {
		metricsPort = fallbackMetricsPort
	}

	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: exporter})
	if err != nil {
		_ = exporter.Stop()
		return fmt.Errorf("create telemetry system: %w", err)
	}

	PrometheusExporter = exporter
	TelemetrySystem = sys
	return nil
}

// StopMetrics shuts the exporter down and disables emission. Safe to call
// when metrics were never started.
func StopMetrics() error {
	exporter := PrometheusExporter
	PrometheusExporter = nil
	TelemetrySystem = nil
	if exporter == nil {
		return nil
	}
	return exporter.Stop()
}

// GetMetricsPort returns the port the exporter listens on.
func GetMetricsPort() int {
	return metricsPort
}

func resolvePort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}

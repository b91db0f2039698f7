package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	errwrap "github.com/vidlinks/vidlinks/internal/errors"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/server/handlers"
)

var healthServer string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Run a self-health check to verify the application can start successfully.
With --server, also query a running instance's readiness probe.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := observability.CLILogger
		logger.Info("Running health check...")

		if versionInfo.Version == "" {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewConfigInvalidError("Version information missing"))
			return
		}
		logger.Debug("Version check passed", zap.String("version", versionInfo.Version))
		logger.Info("✅ Version information available")

		cfg, err := currentConfig()
		if err != nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Configuration not loaded", errwrap.WrapConfigInvalid(context.Background(), err, "configuration not loaded"))
			return
		}
		logger.Info("✅ Configuration loaded", zap.String("environment", cfg.Environment))
		for _, w := range cfg.Warnings() {
			logger.Warn("⚠️  " + w)
		}

		if strings.TrimSpace(healthServer) != "" {
			status, err := probeReadiness(commandContext(cmd), healthServer)
			if err != nil {
				ExitWithCode(logger, foundry.ExitExternalServiceUnavailable, "Server not ready", errwrap.WrapExternalService(context.Background(), err, "readiness probe failed"))
				return
			}
			logger.Info("✅ Server ready", zap.String("status", status))
		}

		logger.Info("")
		logger.Info("✅ All health checks passed")
	},
}

func probeReadiness(ctx context.Context, base string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	target := strings.TrimRight(strings.TrimSpace(base), "/") + "/health/ready"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	var probe handlers.ProbeResponse
	_ = json.NewDecoder(resp.Body).Decode(&probe)
	if resp.StatusCode != http.StatusOK {
		return probe.Status, fmt.Errorf("readiness returned HTTP %d", resp.StatusCode)
	}
	return probe.Status, nil
}

func init() {
	healthCmd.Flags().StringVar(&healthServer, "server", "", "Base URL of a running server to probe")
	rootCmd.AddCommand(healthCmd)
}

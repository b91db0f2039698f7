package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/appid"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/server/handlers"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display environment, configuration, and version information.",
	Run: func(cmd *cobra.Command, args []string) {
		logger := observability.CLILogger
		version := crucible.GetVersion()
		identity := GetAppIdentity()

		logger.Info("=== Environment Information ===")
		logger.Info("")

		logger.Info("Application:")
		logger.Info("  Name:       " + appid.BinaryName(identity))
		logger.Info("  Version:    " + versionInfo.Version)
		logger.Info("  Commit:     " + versionInfo.Commit)
		logger.Info("  Built:      " + versionInfo.BuildDate)
		logger.Info("  Env Prefix: " + appid.EnvPrefix(identity))
		logger.Info("")

		logger.Info("SSOT:")
		logger.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		logger.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		logger.Info("  Extractor:  "+orUnset(handlers.ExtractorVersion()), zap.String("extractor_version", handlers.ExtractorVersion()))
		logger.Info("")

		logger.Info("Runtime:")
		logger.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		logger.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		logger.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		logger.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		logger.Info("")

		cfg, err := currentConfig()
		if err != nil {
			logger.Warn("Config load failed", zap.Error(err))
			return
		}

		logger.Info("Configuration:")
		logger.Info("  Config File:    " + orUnset(viper.ConfigFileUsed()))
		logger.Info("  Environment:    " + cfg.Environment)
		logger.Info(fmt.Sprintf("  Listen:         %s:%d", cfg.Server.Host, cfg.Server.Port))
		logger.Info("  Log Level:      " + orUnset(cfg.Logging.Level))
		logger.Info(fmt.Sprintf("  Metrics:        %t (port %d)", cfg.Metrics.Enabled, cfg.Metrics.Port))
		logger.Info("")

		logger.Info("Links endpoint:")
		logger.Info("  Origins:        " + strings.Join(cfg.CORS.AllowedOrigins, ", "))
		logger.Info(fmt.Sprintf("  API key:        %s", setOrNot(cfg.Auth.APIKey)))
		logger.Info(fmt.Sprintf("  Rate limit:     %t (%d per %s)", cfg.RateLimit.Enabled, cfg.RateLimit.PerMinute, cfg.RateLimit.Window))
		logger.Info(fmt.Sprintf("  Timeout:        %s x %d retries", cfg.Timeout.Function, cfg.Timeout.Retries))
		logger.Info(fmt.Sprintf("  Upstream RPS:   %g (burst %d)", cfg.Extractor.UpstreamRPS, cfg.Extractor.UpstreamBurst))
		logger.Info(fmt.Sprintf("  Host check:     %t", cfg.Extractor.ValidateHost))
		logger.Info(fmt.Sprintf("  Admin endpoint: %s", setOrNot(cfg.Admin.Token)))
		logger.Info("")

		logger.Info("=== End Environment Information ===")
	},
}

func orUnset(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(unset)"
	}
	return value
}

func setOrNot(secret string) string {
	if strings.TrimSpace(secret) == "" {
		return "(not set)"
	}
	return "(set)"
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}

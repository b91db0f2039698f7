package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/config"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/output"
)

// upstreamHost is resolved by doctor to confirm outbound DNS works.
const upstreamHost = "www.youtube.com"

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long:  "Run diagnostic checks on the system and suggest fixes for common issues.",
	Run: func(cmd *cobra.Command, args []string) {
		logger := observability.CLILogger
		logger.Info("=== doctor ===")
		logger.Info("")

		allChecks := true
		const totalChecks = 5

		goVersion := runtime.Version()
		logger.Info(fmt.Sprintf("[1/%d] Checking Go runtime... ✅ %s %s/%s", totalChecks, goVersion, runtime.GOOS, runtime.GOARCH),
			zap.String("go_version", goVersion))

		version := crucible.GetVersion()
		if version.Crucible != "" && version.Gofulmen != "" {
			logger.Info(fmt.Sprintf("[2/%d] Checking Crucible/Gofulmen... ✅ v%s / v%s", totalChecks, version.Crucible, version.Gofulmen))
		} else {
			logger.Error(fmt.Sprintf("[2/%d] Checking Crucible/Gofulmen... ❌ version metadata unavailable", totalChecks))
			allChecks = false
		}

		configPath := config.DefaultConfigPath(configName())
		switch {
		case configPath == "":
			logger.Warn(fmt.Sprintf("[3/%d] Checking config file... ⚠️  cannot resolve config directory", totalChecks))
			allChecks = false
		case fileExists(configPath):
			logger.Info(fmt.Sprintf("[3/%d] Checking config file... ✅ %s", totalChecks, configPath))
		default:
			logger.Info(fmt.Sprintf("[3/%d] Checking config file... ✅ none at %s (defaults and environment; see 'doctor init')", totalChecks, configPath))
		}

		cfg, err := currentConfig()
		if err != nil {
			logger.Error(fmt.Sprintf("[4/%d] Checking configuration... ❌ %v", totalChecks, err))
			allChecks = false
		} else if warnings := cfg.Warnings(); len(warnings) > 0 {
			logger.Warn(fmt.Sprintf("[4/%d] Checking configuration... ⚠️  %d warning(s)", totalChecks, len(warnings)))
			for _, w := range warnings {
				logger.Warn("       " + w)
			}
		} else {
			logger.Info(fmt.Sprintf("[4/%d] Checking configuration... ✅ %s", totalChecks, cfg.Environment))
		}

		ctx, cancel := context.WithTimeout(commandContext(cmd), 5*time.Second)
		defer cancel()
		if addrs, err := net.DefaultResolver.LookupHost(ctx, upstreamHost); err != nil {
			logger.Error(fmt.Sprintf("[5/%d] Checking upstream DNS... ❌ %s: %v", totalChecks, upstreamHost, err))
			allChecks = false
		} else {
			logger.Info(fmt.Sprintf("[5/%d] Checking upstream DNS... ✅ %s (%d addresses)", totalChecks, upstreamHost, len(addrs)))
		}

		logger.Info("")
		if allChecks {
			logger.Info("✅ All checks passed!")
		} else {
			logger.Warn("⚠️  Some checks failed. Review the output above for details.")
		}
		logger.Info("")
		logger.Info("=== End Diagnostics ===")
	},
}

var doctorInitForce bool

var doctorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultConfigPath(configName())
		if configPath == "" {
			return fmt.Errorf("config path not resolved")
		}
		if fileExists(configPath) && !doctorInitForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
		}

		cfg, err := currentConfig()
		if err != nil {
			return err
		}
		// Secrets stay in the environment; the file gets empty values.
		seed := *cfg
		seed.Auth.APIKey = ""
		seed.Admin.Token = ""

		data, err := output.MarshalYAML(seed.Settings())
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		if err := os.WriteFile(configPath, []byte(data), 0o600); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		observability.CLILogger.Info("Wrote config file", zap.String("path", configPath))
		return nil
	},
}

func configName() string {
	if identity := GetAppIdentity(); identity != nil {
		return identity.ConfigName
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func init() {
	doctorInitCmd.Flags().BoolVar(&doctorInitForce, "force", false, "Overwrite an existing config file")
	doctorCmd.AddCommand(doctorInitCmd)
	rootCmd.AddCommand(doctorCmd)
}

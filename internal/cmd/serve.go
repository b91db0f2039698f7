package cmd

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vidlinks/vidlinks/internal/appid"
	"github.com/vidlinks/vidlinks/internal/auth"
	"github.com/vidlinks/vidlinks/internal/config"
	"github.com/vidlinks/vidlinks/internal/cors"
	errwrap "github.com/vidlinks/vidlinks/internal/errors"
	"github.com/vidlinks/vidlinks/internal/metrics"
	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/ratelimit"
	"github.com/vidlinks/vidlinks/internal/server"
	"github.com/vidlinks/vidlinks/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// liveSettings are the parts of a running server that follow config reloads.
type liveSettings struct {
	origins          *cors.Validator
	limiter          *ratelimit.Limiter
	rateLimitEnabled *atomic.Bool
	gate             *auth.Gate
}

func newLiveSettings(cfg *config.Config) *liveSettings {
	ls := &liveSettings{
		origins: cors.New(cfg.CORS.AllowedOrigins),
		limiter: ratelimit.New(ratelimit.NewTable(), ratelimit.Options{
			Capacity: cfg.RateLimit.PerMinute,
			Window:   cfg.RateLimit.Window,
		}),
		rateLimitEnabled: &atomic.Bool{},
		gate:             auth.New(cfg.Auth.APIKey),
	}
	ls.rateLimitEnabled.Store(cfg.RateLimit.Enabled)
	return ls
}

// apply pushes reloadable values into the running components. Listener
// address, timeouts and the window length need a restart.
func (ls *liveSettings) apply(cfg *config.Config) {
	ls.origins.Update(cfg.CORS.AllowedOrigins)
	ls.limiter.SetCapacity(cfg.RateLimit.PerMinute)
	ls.rateLimitEnabled.Store(cfg.RateLimit.Enabled)
	ls.gate.SetSecret(cfg.Auth.APIKey)
}

func logWarnings(cfg *config.Config) {
	for _, w := range cfg.Warnings() {
		observability.ServerLogger.Warn("Configuration warning", zap.String("warning", w))
	}
}

func registerHealthChecks(hm *handlers.HealthManager, cfg *config.Config, ls *liveSettings) {
	identity := GetAppIdentity()

	hm.RegisterChecker("app_identity", handlers.CheckerFunc(func(ctx context.Context) error {
		switch {
		case identity == nil || identity.BinaryName == "":
			return errwrap.NewConfigInvalidError("app identity missing binary name")
		case identity.EnvPrefix == "":
			return errwrap.NewConfigInvalidError("app identity missing env prefix")
		case identity.ConfigName == "":
			return errwrap.NewConfigInvalidError("app identity missing config name")
		}
		return nil
	}))

	hm.RegisterChecker("configuration", handlers.CheckerFunc(func(ctx context.Context) error {
		if config.GetConfig() == nil {
			return errwrap.NewConfigInvalidError("configuration not loaded")
		}
		return nil
	}))

	hm.RegisterChecker("rate_limiter", handlers.CheckerFunc(func(ctx context.Context) error {
		stats := ls.limiter.Stats()
		metrics.SetRateLimitTrackedClients(stats.TrackedClients)
		if stats.Capacity <= 0 {
			return errwrap.NewConfigInvalidError("rate limit capacity must be positive")
		}
		return nil
	}))

	if cfg.Metrics.Enabled {
		hm.RegisterChecker("telemetry", handlers.CheckerFunc(func(ctx context.Context) error {
			if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
				return errwrap.NewInternalError("telemetry system not initialized")
			}
			return nil
		}))
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Endpoints:
  GET /api/getDownloadLinks?url=...           Download links for a video
  GET /.netlify/functions/getDownloadLinks    Same endpoint, legacy path
  GET /health, /health/{live,ready,startup}   Health probes
  GET /version, /metrics                      Build info and Prometheus metrics

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Reload config (origins, rate limit, API key)

Config file edits are picked up without a signal as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := currentConfig()
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "config unavailable")
		}

		identity := GetAppIdentity()
		binaryName := appid.BinaryName(identity)
		namespace := binaryName
		if identity != nil {
			namespace = identity.TelemetryNamespace()
		}

		observability.InitServerLogger(observability.ServerLoggerOptions{
			Service:     binaryName,
			Level:       cfg.Logging.Level,
			Environment: cfg.Environment,
			Namespace:   namespace,
		})

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(observability.MetricsOptions{
				Service:   binaryName,
				Namespace: namespace,
				Port:      cfg.Metrics.Port,
			}); err != nil {
				observability.ServerLogger.Error("Failed to initialize metrics", zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
		}
		metrics.SetServerStartTime(time.Now().Unix())

		observability.ServerLogger.Info("Initializing server",
			zap.String("service", binaryName),
			zap.String("namespace", namespace),
			zap.String("version", versionInfo.Version),
			zap.String("environment", cfg.Environment),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Int("metrics_port", cfg.Metrics.Port),
			zap.Duration("function_timeout", cfg.Timeout.Function))
		logWarnings(cfg)

		ls := newLiveSettings(cfg)

		hm := handlers.NewHealthManager(versionInfo.Version)
		if cfg.Health.Enabled {
			registerHealthChecks(hm, cfg, ls)
		}
		handlers.SetAppIdentity(identity)

		srv := server.New(server.Options{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
			MetricsPort:  cfg.Metrics.Port,
			AdminToken:   cfg.Admin.Token,
		}, server.Deps{
			Origins:          ls.origins,
			Limiter:          ls.limiter,
			RateLimitEnabled: ls.rateLimitEnabled,
			Auth:             ls.gate,
			Resolver:         buildService(cfg),
			Health:           hm,
		})

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sweeper := ratelimit.NewSweeper(ls.limiter, cfg.RateLimit.SweepInterval)
		if err := sweeper.Start(ctx); err != nil {
			return errwrap.WrapInternal(ctx, err, "rate limit sweeper failed to start")
		}

		reload := func(next *config.Config) {
			ls.apply(next)
			logWarnings(next)
			observability.ServerLogger.Info("Configuration applied",
				zap.Strings("allowed_origins", next.CORS.AllowedOrigins),
				zap.Int("rate_limit_per_minute", next.RateLimit.PerMinute),
				zap.Bool("rate_limit_enabled", next.RateLimit.Enabled),
				zap.Bool("auth_enabled", next.Auth.APIKey != ""))
		}

		v := viper.GetViper()
		if v.ConfigFileUsed() != "" {
			config.Watch(v, reload, func(err error) {
				observability.ServerLogger.Error("Config change rejected, keeping current settings", zap.Error(err))
			})
		}

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Shutdown handlers run LIFO: the HTTP server stops first, the logger
		// flushes last.
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Flushing logger...")
			if err := observability.ServerLogger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
					zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			if err := observability.StopMetrics(); err != nil {
				observability.ServerLogger.Warn("Metrics exporter stop returned error", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			sweeper.Stop()
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			observability.ServerLogger.Info("HTTP server stopped gracefully")
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			observability.ServerLogger.Info("Received SIGHUP: attempting config reload")

			if err := v.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					observability.ServerLogger.Error("Failed to reload config file",
						zap.String("file", v.ConfigFileUsed()),
						zap.Error(err))
					return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
				}
				observability.ServerLogger.Info("No config file found - re-reading environment only")
			}

			next, err := config.Load(v)
			if err != nil {
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}
			reload(next)
			return nil
		})

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			observability.ServerLogger.Warn("Failed to enable double-tap force quit",
				zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(ctx); err != nil {
				observability.ServerLogger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(ctx, err, "server error")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

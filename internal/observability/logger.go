package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
)

var (
	// CLILogger is the SIMPLE profile logger used by commands.
	CLILogger *logging.Logger

	// ServerLogger is the STRUCTURED profile logger used by serve.
	ServerLogger *logging.Logger
)

// Accepted logging.level values and the gofulmen severity each selects.
var levels = map[string]string{
	"trace":   "TRACE",
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

// ParseLevel maps a configured level onto a gofulmen severity. Empty means
// INFO; anything unrecognized is an error.
func ParseLevel(value string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "INFO", nil
	}
	if severity, ok := levels[normalized]; ok {
		return severity, nil
	}
	return "", fmt.Errorf("unknown log level %q", value)
}

// InitCLILogger installs CLILogger. verbose lowers the level to DEBUG.
func InitCLILogger(serviceName string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		fatalInit("Failed to initialize CLI logger", err)
	}
	if verbose {
		logger.SetLevel(logging.DEBUG)
	}
	CLILogger = logger
}

// ServerLoggerOptions configures the structured server logger.
type ServerLoggerOptions struct {
	Service string
	// Level is a logging.level value; unknown values log at INFO.
	Level       string
	Environment string
	// Namespace is added as a static field for telemetry correlation.
	Namespace string
}

// InitServerLogger installs ServerLogger.
func InitServerLogger(opts ServerLoggerOptions) {
	logger, err := NewServerLogger(opts)
	if err != nil {
		fatalInit("Failed to initialize server logger", err)
	}
	ServerLogger = logger
}

// NewServerLogger builds a JSON logger on stderr with the correlation
// middleware. Stack traces are attached outside production.
func NewServerLogger(opts ServerLoggerOptions) (*logging.Logger, error) {
	return logging.New(serverLoggerConfig(opts))
}

func serverLoggerConfig(opts ServerLoggerOptions) *logging.LoggerConfig {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		level = "INFO"
	}
	environment := opts.Environment
	if environment == "" {
		environment = "production"
	}
	static := map[string]any{}
	if opts.Namespace != "" {
		static["namespace"] = opts.Namespace
	}

	return &logging.LoggerConfig{
		Profile:      logging.ProfileStructured,
		DefaultLevel: level,
		Service:      opts.Service,
		Environment:  environment,
		StaticFields: static,
		Middleware: []logging.MiddlewareConfig{{
			Name:    "correlation",
			Enabled: true,
			Order:   100,
			Config:  map[string]any{},
		}},
		Sinks: []logging.SinkConfig{{
			Type:    "console",
			Format:  "json",
			Console: &logging.ConsoleSinkConfig{Stream: "stderr"},
		}},
		EnableCaller:     true,
		EnableStacktrace: environment != "production",
	}
}

// fatalInit reports a logger construction failure on stderr and exits with
// the config-invalid code. No logger exists yet to carry it.
func fatalInit(msg string, err error) {
	code := int(foundry.ExitConfigInvalid)
	fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	if info, ok := foundry.GetExitCodeInfo(foundry.ExitConfigInvalid); ok {
		code = info.Code
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
	}
	os.Exit(code)
}

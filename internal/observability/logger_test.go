package observability

import (
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitCLILogger(t *testing.T) {
	InitCLILogger("vidlinks-test", true)
	require.NotNil(t, CLILogger)
	CLILogger.Debug("cli logger ready", zap.String("mode", "verbose"))
}

func TestNewServerLogger(t *testing.T) {
	logger, err := NewServerLogger(ServerLoggerOptions{
		Service:     "vidlinks-test",
		Level:       "DEBUG",
		Environment: "test",
		Namespace:   "vidlinks",
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("server logger ready",
		zap.String("component", "test"),
		zap.String("request_id", "req-1"))
}

func TestInitServerLoggerSetsGlobal(t *testing.T) {
	previous := ServerLogger
	t.Cleanup(func() { ServerLogger = previous })

	InitServerLogger(ServerLoggerOptions{Service: "vidlinks-test", Level: "warn"})
	assert.NotNil(t, ServerLogger)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		" Debug ": "DEBUG",
		"warning": "WARN",
		"trace":   "TRACE",
		"":        "INFO",
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestServerLoggerConfig(t *testing.T) {
	cfg := serverLoggerConfig(ServerLoggerOptions{Service: "vidlinks", Level: "nonsense", Namespace: "links"})
	assert.Equal(t, "INFO", cfg.DefaultLevel)
	assert.Equal(t, "production", cfg.Environment)
	assert.False(t, cfg.EnableStacktrace)
	assert.Equal(t, "links", cfg.StaticFields["namespace"])

	dev := serverLoggerConfig(ServerLoggerOptions{Service: "vidlinks", Environment: "development"})
	assert.True(t, dev.EnableStacktrace)
	assert.Empty(t, dev.StaticFields)
}

func TestCrucibleVersionAvailable(t *testing.T) {
	version := crucible.GetVersion()
	assert.NotEmpty(t, version.Gofulmen)
	assert.NotEmpty(t, version.Crucible)
}

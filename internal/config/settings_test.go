package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRendersDurationsAsStrings(t *testing.T) {
	cfg := Config{
		Server:  ServerConfig{Port: 9000, ReadTimeout: 30 * time.Second},
		Timeout: TimeoutConfig{Function: 10 * time.Second},
	}

	settings := cfg.Settings()
	server, ok := settings["server"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 9000, server["port"])
	assert.Equal(t, "30s", server["read_timeout"])

	timeoutSettings, ok := settings["timeout"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "10s", timeoutSettings["function"])
}

func TestSettingsRoundTripThroughLoad(t *testing.T) {
	original := Config{
		Environment: EnvProduction,
		Server:      ServerConfig{Host: "0.0.0.0", Port: 9000, ReadTimeout: 15 * time.Second},
		CORS:        CORSConfig{AllowedOrigins: []string{"https://app.example"}},
		RateLimit:   RateLimitConfig{Enabled: true, PerMinute: 12, Window: time.Minute, SweepInterval: 5 * time.Minute},
		Timeout:     TimeoutConfig{Function: 8 * time.Second, Retries: 1, RetryDelay: 250 * time.Millisecond},
	}

	v := viper.New()
	require.NoError(t, v.MergeConfigMap(original.Settings()))

	loaded, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, original.Server.ReadTimeout, loaded.Server.ReadTimeout)
	assert.Equal(t, original.Timeout.Function, loaded.Timeout.Function)
	assert.Equal(t, original.Timeout.RetryDelay, loaded.Timeout.RetryDelay)
	assert.Equal(t, 12, loaded.RateLimit.PerMinute)
	assert.Equal(t, []string{"https://app.example"}, loaded.CORS.AllowedOrigins)
}

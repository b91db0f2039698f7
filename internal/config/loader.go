// Package config loads vidlinks configuration with viper. Sources, lowest
// precedence first: built-in defaults, the optional YAML config file, then
// environment variables. Both the prefixed names (VIDLINKS_PORT) and the
// unprefixed legacy names (ALLOWED_ORIGINS, API_SECRET_KEY, ...) are read.
package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/vidlinks/vidlinks/internal/observability"
	"github.com/vidlinks/vidlinks/internal/ratelimit"
	"github.com/vidlinks/vidlinks/internal/timeout"
)

// DefaultEnvPrefix is used when no app identity is available.
const DefaultEnvPrefix = "VIDLINKS_"

// DevelopmentOrigins are allowed when no origin list is configured in
// development.
var DevelopmentOrigins = []string{
	"http://localhost:7777",
	"http://localhost:3000",
	"http://127.0.0.1:7777",
	"http://127.0.0.1:3000",
}

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvProduction)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("auth.api_key", "")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.per_minute", ratelimit.DefaultCapacity)
	v.SetDefault("rate_limit.window", ratelimit.DefaultWindow.String())
	v.SetDefault("rate_limit.sweep_interval", ratelimit.DefaultSweepInterval.String())

	v.SetDefault("timeout.function", timeout.DefaultTimeout.String())
	v.SetDefault("timeout.frontend", "15s")
	v.SetDefault("timeout.retries", timeout.DefaultRetries)
	v.SetDefault("timeout.retry_delay", timeout.DefaultRetryDelay.String())

	v.SetDefault("extractor.http_timeout", "30s")
	v.SetDefault("extractor.upstream_rps", 0)
	v.SetDefault("extractor.upstream_burst", 5)
	v.SetDefault("extractor.validate_host", true)
	v.SetDefault("extractor.coalesce_wait", "1m")
	v.SetDefault("extractor.resolve_ciphered", true)

	v.SetDefault("logging.level", "info")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)
	v.SetDefault("admin.token", "")
}

// envAliases maps config keys to their environment names. Names without a
// prefix placeholder are legacy names read verbatim.
var envAliases = map[string][]string{
	"environment":             {"{P}ENV", "NODE_ENV"},
	"server.host":             {"{P}HOST"},
	"server.port":             {"{P}PORT", "PORT"},
	"server.read_timeout":     {"{P}READ_TIMEOUT"},
	"server.write_timeout":    {"{P}WRITE_TIMEOUT"},
	"server.idle_timeout":     {"{P}IDLE_TIMEOUT"},
	"server.shutdown_timeout": {"{P}SHUTDOWN_TIMEOUT"},
	"cors.allowed_origins":    {"{P}ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	"auth.api_key":            {"{P}API_KEY", "API_SECRET_KEY"},
	"rate_limit.enabled":      {"{P}RATE_LIMIT_ENABLED", "ENABLE_RATE_LIMIT"},
	"rate_limit.per_minute":   {"{P}RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_PER_MINUTE"},
	"timeout.function":        {"{P}FUNCTION_TIMEOUT", "FUNCTION_TIMEOUT"},
	"timeout.frontend":        {"{P}FRONTEND_TIMEOUT", "FRONTEND_TIMEOUT"},
	"timeout.retries":         {"{P}TIMEOUT_RETRIES"},
	"extractor.upstream_rps":  {"{P}UPSTREAM_RPS"},
	"logging.level":           {"{P}LOG_LEVEL"},
	"metrics.enabled":         {"{P}METRICS_ENABLED"},
	"metrics.port":            {"{P}METRICS_PORT"},
	"admin.token":             {"{P}ADMIN_TOKEN"},
	"netlify_dev":             {"NETLIFY_DEV"},
}

// BindEnv wires environment variables into v. Keys without an explicit
// alias are still read as PREFIX + upper-cased key with dots as
// underscores (VIDLINKS_EXTRACTOR_HTTP_TIMEOUT).
func BindEnv(v *viper.Viper, prefix string) error {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}

	v.SetEnvPrefix(strings.TrimSuffix(prefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envAliases {
		input := make([]string, 0, len(names)+1)
		input = append(input, key)
		for _, name := range names {
			input = append(input, strings.ReplaceAll(name, "{P}", prefix))
		}
		if err := v.BindEnv(input...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Load decodes v into a Config, applies environment-dependent defaults and
// records it as the current configuration.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if isTruthy(v.GetString("netlify_dev")) {
		cfg.Environment = EnvDevelopment
	}
	normalize(cfg)

	setConfig(cfg)
	return cfg, nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		millisecondsHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		flexibleBoolHook(),
	)
}

var durationType = reflect.TypeOf(time.Duration(0))

// millisecondsHook reads bare numbers as milliseconds, so FUNCTION_TIMEOUT=10000
// means ten seconds. Strings with a unit ("10s") pass through.
func millisecondsHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType || from == durationType {
			return data, nil
		}
		switch from.Kind() {
		case reflect.String:
			s := strings.TrimSpace(data.(string))
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return data, nil
			}
			return time.Duration(n) * time.Millisecond, nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()) * time.Millisecond, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return time.Duration(reflect.ValueOf(data).Uint()) * time.Millisecond, nil
		case reflect.Float32, reflect.Float64:
			return time.Duration(reflect.ValueOf(data).Float() * float64(time.Millisecond)), nil
		}
		return data, nil
	}
}

// flexibleBoolHook accepts true/1/yes/on (any case) as true and every other
// string as false.
func flexibleBoolHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to.Kind() != reflect.Bool || from.Kind() != reflect.String {
			return data, nil
		}
		return isTruthy(data.(string)), nil
	}
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

func normalize(cfg *Config) {
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.Environment == "" {
		cfg.Environment = EnvProduction
	}

	origins := make([]string, 0, len(cfg.CORS.AllowedOrigins))
	for _, o := range cfg.CORS.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		if cfg.IsDevelopment() {
			origins = append(origins, DevelopmentOrigins...)
		} else {
			origins = []string{"*"}
		}
	}
	cfg.CORS.AllowedOrigins = origins

	cfg.Auth.APIKey = strings.TrimSpace(cfg.Auth.APIKey)

	if cfg.RateLimit.PerMinute <= 0 {
		cfg.RateLimit.PerMinute = ratelimit.DefaultCapacity
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = ratelimit.DefaultWindow
	}
	if cfg.RateLimit.SweepInterval <= 0 {
		cfg.RateLimit.SweepInterval = ratelimit.DefaultSweepInterval
	}
	if cfg.Timeout.Function <= 0 {
		cfg.Timeout.Function = timeout.DefaultTimeout
	}
	if cfg.Timeout.Retries < 0 {
		cfg.Timeout.Retries = 0
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
}

// Warnings reports settings that load but are likely mistakes.
func (c *Config) Warnings() []string {
	var warnings []string
	budget, err := timeout.ValidateBudget(c.Timeout.Function, c.Timeout.Frontend)
	if err != nil {
		warnings = append(warnings, err.Error())
	}
	warnings = append(warnings, budget...)

	for _, o := range c.CORS.AllowedOrigins {
		if o == "*" && len(c.CORS.AllowedOrigins) > 1 {
			warnings = append(warnings, "cors.allowed_origins contains \"*\" alongside explicit origins; every origin is allowed")
			break
		}
	}
	if !c.RateLimit.Enabled {
		warnings = append(warnings, "rate limiting is disabled")
	}
	if _, err := observability.ParseLevel(c.Logging.Level); err != nil {
		warnings = append(warnings, "logging.level: "+err.Error()+", using info")
	}
	return warnings
}

// Policy returns the timeout policy for link resolution.
func (c *Config) Policy() timeout.Policy {
	return timeout.Policy{
		Timeout: c.Timeout.Function,
		Retries: c.Timeout.Retries,
		Delay:   c.Timeout.RetryDelay,
	}
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// Watch reloads the config file on every change and hands the result to
// onChange. Decode failures go to onError and leave the current config in
// place.
func Watch(v *viper.Viper, onChange func(*Config), onError func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath(configName string) string {
	if strings.TrimSpace(configName) == "" {
		configName = "vidlinks"
	}
	configDir := gfconfig.GetAppConfigDir(configName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

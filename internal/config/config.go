package config

import (
	"time"
)

// Environments recognized by the loader.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config represents the complete application configuration. Values come
// from defaults, the optional config file, then environment variables.
type Config struct {
	Environment string          `mapstructure:"environment" yaml:"environment"`
	Server      ServerConfig    `mapstructure:"server" yaml:"server"`
	CORS        CORSConfig      `mapstructure:"cors" yaml:"cors"`
	Auth        AuthConfig      `mapstructure:"auth" yaml:"auth"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Timeout     TimeoutConfig   `mapstructure:"timeout" yaml:"timeout"`
	Extractor   ExtractorConfig `mapstructure:"extractor" yaml:"extractor"`
	Logging     LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Metrics     MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Health      HealthConfig    `mapstructure:"health" yaml:"health"`
	Admin       AdminConfig     `mapstructure:"admin" yaml:"admin"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// CORSConfig lists the origins allowed to read responses. "*" allows all.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// AuthConfig holds the shared API secret. Empty disables the check.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
}

// RateLimitConfig configures the per-client fixed-window limiter.
type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled" yaml:"enabled"`
	PerMinute     int           `mapstructure:"per_minute" yaml:"per_minute"`
	Window        time.Duration `mapstructure:"window" yaml:"window"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// TimeoutConfig bounds the upstream extraction.
type TimeoutConfig struct {
	// Function is the per-attempt deadline.
	Function time.Duration `mapstructure:"function" yaml:"function"`
	// Frontend is the client's own deadline, used only for budget warnings.
	Frontend   time.Duration `mapstructure:"frontend" yaml:"frontend"`
	Retries    int           `mapstructure:"retries" yaml:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

// ExtractorConfig configures the upstream video client.
type ExtractorConfig struct {
	HTTPTimeout     time.Duration `mapstructure:"http_timeout" yaml:"http_timeout"`
	UpstreamRPS     float64       `mapstructure:"upstream_rps" yaml:"upstream_rps"`
	UpstreamBurst   int           `mapstructure:"upstream_burst" yaml:"upstream_burst"`
	ValidateHost    bool          `mapstructure:"validate_host" yaml:"validate_host"`
	CoalesceWait    time.Duration `mapstructure:"coalesce_wait" yaml:"coalesce_wait"`
	ResolveCiphered bool          `mapstructure:"resolve_ciphered" yaml:"resolve_ciphered"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Port is the dedicated exporter port; /metrics on the main port proxies it.
	Port int `mapstructure:"port" yaml:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// AdminConfig enables the admin signal endpoint when Token is set.
type AdminConfig struct {
	Token string `mapstructure:"token" yaml:"token"`
}

// IsDevelopment reports whether the development defaults apply.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Auth.APIKey != "" {
		c.Auth.APIKey = redactedValue
	}
	if c.Admin.Token != "" {
		c.Admin.Token = redactedValue
	}
	c.CORS.AllowedOrigins = append([]string(nil), c.CORS.AllowedOrigins...)
	return c
}

const redactedValue = "********"

// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-similarity/internal/ranking"
	"github.com/jonathan/job-similarity/internal/types"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. JOBSIM_SERVER_PORT.
const EnvPrefix = "JOBSIM"

// Config is the full service configuration.
// Values come from defaults, then an optional YAML/JSON file, then JOBSIM_* environment variables.
type Config struct {
	Server    ServerConfig       `mapstructure:"server"`
	Database  DatabaseConfig     `mapstructure:"database"`
	Engine    EngineConfig       `mapstructure:"engine"`
	Weights   map[string]float64 `mapstructure:"weights"`
	Log       LogConfig          `mapstructure:"log"`
	RateLimit RateLimitConfig    `mapstructure:"rate_limit"`
	Breaker   BreakerConfig      `mapstructure:"breaker"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

// DatabaseConfig holds PostgreSQL pool settings.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns" validate:"min=0"`
	MinConns int32  `mapstructure:"min_conns" validate:"min=0,ltefield=MaxConns"`
}

// EngineConfig tunes the recommendation pipeline.
type EngineConfig struct {
	DefaultLimit   int                `mapstructure:"default_limit" validate:"min=1,max=10,ltefield=MaxLimit"`
	MaxLimit       int                `mapstructure:"max_limit" validate:"min=1,max=10"`
	CandidatePool  int                `mapstructure:"candidate_pool" validate:"min=1,max=1000"`
	Workers        int                `mapstructure:"workers" validate:"min=0,max=64"`
	RequestTimeout time.Duration      `mapstructure:"request_timeout" validate:"min=0"`
	SkillWeights   map[string]float64 `mapstructure:"skill_weights"`
}

// LogConfig selects the log encoder and level.
type LogConfig struct {
	Format string `mapstructure:"format" validate:"oneof=console json"`
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// RateLimitConfig configures the per-client HTTP rate limiter.
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"min=1"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval" validate:"min=0"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl" validate:"min=0"`
	Whitelist         []string      `mapstructure:"whitelist"`
	Blacklist         []string      `mapstructure:"blacklist"`
	// Endpoints override the default rate per path and method. A path ending in "/" matches by prefix.
	Endpoints []RateLimitEndpoint `mapstructure:"endpoints" validate:"dive"`
}

// RateLimitEndpoint allows Limit requests per Window on one endpoint.
type RateLimitEndpoint struct {
	Path   string        `mapstructure:"path" validate:"required,startswith=/"`
	Method string        `mapstructure:"method" validate:"omitempty,oneof=GET HEAD OPTIONS"`
	Limit  int           `mapstructure:"limit" validate:"min=1"`
	Window time.Duration `mapstructure:"window" validate:"gt=0"`
	Burst  int           `mapstructure:"burst" validate:"min=0"`
}

// BreakerConfig configures the circuit breaker guarding the job store.
type BreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval" validate:"min=0"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"min=0"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio" validate:"gte=0,lte=1"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns: 10,
			MinConns: 1,
		},
		Engine: EngineConfig{
			DefaultLimit:   types.DefaultSimilarLimit,
			MaxLimit:       types.MaxSimilarLimit,
			CandidatePool:  200,
			Workers:        4,
			RequestTimeout: 5 * time.Second,
		},
		Weights: ranking.DefaultWeights().Map(),
		Log: LogConfig{
			Format: "console",
			Level:  "info",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 20,
			Burst:             40,
			CleanupInterval:   5 * time.Minute,
			IdleTTL:           time.Hour,
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.6,
		},
	}
}

// Load reads configuration from path (optional) and the environment.
// The weight table is taken whole from the file when present, otherwise the defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind database url: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg = cfg.MergeWithDefaults(Defaults())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", d.Database.MaxConns)
	v.SetDefault("database.min_conns", d.Database.MinConns)

	v.SetDefault("engine.default_limit", d.Engine.DefaultLimit)
	v.SetDefault("engine.max_limit", d.Engine.MaxLimit)
	v.SetDefault("engine.candidate_pool", d.Engine.CandidatePool)
	v.SetDefault("engine.workers", d.Engine.Workers)
	v.SetDefault("engine.request_timeout", d.Engine.RequestTimeout)

	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.level", d.Log.Level)

	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
	v.SetDefault("rate_limit.cleanup_interval", d.RateLimit.CleanupInterval)
	v.SetDefault("rate_limit.idle_ttl", d.RateLimit.IdleTTL)

	v.SetDefault("breaker.enabled", d.Breaker.Enabled)
	v.SetDefault("breaker.max_requests", d.Breaker.MaxRequests)
	v.SetDefault("breaker.interval", d.Breaker.Interval)
	v.SetDefault("breaker.timeout", d.Breaker.Timeout)
	v.SetDefault("breaker.min_requests", d.Breaker.MinRequests)
	v.SetDefault("breaker.failure_ratio", d.Breaker.FailureRatio)
}

// Validate checks field ranges and that the weight table is usable.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := c.WeightTable(); err != nil {
		return fmt.Errorf("config error: weights: %w", err)
	}
	return nil
}

// WeightTable builds the scorer's weight table from the configured weights.
func (c *Config) WeightTable() (ranking.WeightTable, error) {
	return ranking.NewWeightTable(c.Weights)
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
// Bools are not merged because unset and false look the same.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if len(result.Weights) == 0 {
		result.Weights = defaults.Weights
	}
	if result.Log.Format == "" {
		result.Log.Format = defaults.Log.Format
	}
	if result.Log.Level == "" {
		result.Log.Level = defaults.Log.Level
	}
	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if result.Engine.DefaultLimit == 0 {
		result.Engine.DefaultLimit = defaults.Engine.DefaultLimit
	}
	if result.Engine.MaxLimit == 0 {
		result.Engine.MaxLimit = defaults.Engine.MaxLimit
	}
	if result.Engine.CandidatePool == 0 {
		result.Engine.CandidatePool = defaults.Engine.CandidatePool
	}
	if result.RateLimit.RequestsPerSecond == 0 {
		result.RateLimit.RequestsPerSecond = defaults.RateLimit.RequestsPerSecond
	}
	if result.RateLimit.Burst == 0 {
		result.RateLimit.Burst = defaults.RateLimit.Burst
	}

	return result
}

// Package config holds the tunable settings of the orchestration core.
//
// Settings can come from three sources with the usual precedence: defaults,
// then a YAML file, then AGENTFORGE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures every tunable of the orchestration core. The zero value is
// not usable; start from Default and override.
type Config struct {
	// AutoSpawnThreshold is the minimum discovery confidence at which
	// monitor_discussion spawns a worker directly instead of enqueueing a
	// spawn request.
	AutoSpawnThreshold float64 `yaml:"auto_spawn_threshold"`

	// DiscoveryConfidenceThreshold filters spawn recommendations produced
	// from task analyses.
	DiscoveryConfidenceThreshold float64 `yaml:"discovery_confidence_threshold"`

	// RequestTimeout bounds every individual reasoning call.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	MaxRetries         int           `yaml:"max_retries"`
	RetryBaseDelay     time.Duration `yaml:"retry_base_delay"`
	RateLimitPerMinute float64       `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int           `yaml:"rate_limit_burst"`

	// HistorySize bounds the in-memory log of discovery analyses.
	HistorySize int `yaml:"history_size"`

	GapCacheSize int           `yaml:"gap_cache_size"`
	GapCacheTTL  time.Duration `yaml:"gap_cache_ttl"`

	// EvaluationWindow is how many recent interactions an evaluation
	// considers.
	EvaluationWindow int `yaml:"evaluation_window"`

	// BacklogThreshold is the pending-request count above which ecosystem
	// reports recommend processing the backlog.
	BacklogThreshold int `yaml:"backlog_threshold"`

	// DefaultModel overrides the provider adapter's default model when set.
	DefaultModel string `yaml:"default_model"`
}

// Default returns the standard configuration.
func Default() *Config {
	return &Config{
		AutoSpawnThreshold:           0.85,
		DiscoveryConfidenceThreshold: 0.65,
		RequestTimeout:               30 * time.Second,
		MaxRetries:                   3,
		RetryBaseDelay:               100 * time.Millisecond,
		RateLimitPerMinute:           60,
		RateLimitBurst:               10,
		HistorySize:                  100,
		GapCacheSize:                 128,
		GapCacheTTL:                  5 * time.Minute,
		EvaluationWindow:             10,
		BacklogThreshold:             5,
		DefaultModel:                 "",
	}
}

// LoadFile reads a YAML file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv applies AGENTFORGE_* environment variables over the defaults.
// Unset or unparseable variables keep their default.
func FromEnv() *Config {
	cfg := Default()
	cfg.AutoSpawnThreshold = getEnvFloat("AGENTFORGE_AUTO_SPAWN_THRESHOLD", cfg.AutoSpawnThreshold)
	cfg.DiscoveryConfidenceThreshold = getEnvFloat("AGENTFORGE_DISCOVERY_CONFIDENCE_THRESHOLD", cfg.DiscoveryConfidenceThreshold)
	cfg.RequestTimeout = getEnvDuration("AGENTFORGE_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.MaxRetries = getEnvInt("AGENTFORGE_MAX_RETRIES", cfg.MaxRetries)
	cfg.RetryBaseDelay = getEnvDuration("AGENTFORGE_RETRY_BASE_DELAY", cfg.RetryBaseDelay)
	cfg.RateLimitPerMinute = getEnvFloat("AGENTFORGE_RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	cfg.RateLimitBurst = getEnvInt("AGENTFORGE_RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.HistorySize = getEnvInt("AGENTFORGE_HISTORY_SIZE", cfg.HistorySize)
	cfg.GapCacheSize = getEnvInt("AGENTFORGE_GAP_CACHE_SIZE", cfg.GapCacheSize)
	cfg.GapCacheTTL = getEnvDuration("AGENTFORGE_GAP_CACHE_TTL", cfg.GapCacheTTL)
	cfg.EvaluationWindow = getEnvInt("AGENTFORGE_EVALUATION_WINDOW", cfg.EvaluationWindow)
	cfg.BacklogThreshold = getEnvInt("AGENTFORGE_BACKLOG_THRESHOLD", cfg.BacklogThreshold)
	cfg.DefaultModel = getEnv("AGENTFORGE_DEFAULT_MODEL", cfg.DefaultModel)
	return cfg
}

// Validate reports the first configuration violation found.
func (c *Config) Validate() error {
	if c.AutoSpawnThreshold < 0 || c.AutoSpawnThreshold > 1 {
		return fmt.Errorf("auto_spawn_threshold must be in [0,1], got %v", c.AutoSpawnThreshold)
	}
	if c.DiscoveryConfidenceThreshold < 0 || c.DiscoveryConfidenceThreshold > 1 {
		return fmt.Errorf("discovery_confidence_threshold must be in [0,1], got %v", c.DiscoveryConfidenceThreshold)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("history_size must be positive, got %d", c.HistorySize)
	}
	if c.GapCacheSize <= 0 {
		return fmt.Errorf("gap_cache_size must be positive, got %d", c.GapCacheSize)
	}
	if c.EvaluationWindow <= 0 {
		return fmt.Errorf("evaluation_window must be positive, got %d", c.EvaluationWindow)
	}
	if c.BacklogThreshold < 0 {
		return fmt.Errorf("backlog_threshold must not be negative, got %d", c.BacklogThreshold)
	}
	return nil
}

// getEnv gets a string environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

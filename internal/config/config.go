// Package config provides layered configuration for the π estimation service.
// Values are resolved as defaults, then an optional YAML file, then
// environment variables with the PI_ prefix. Command-line flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/branched-services/go-pi/pkg/estimator"
)

// FileEnv names the variable that points at a YAML config file.
const FileEnv = "PI_CONFIG_FILE"

// Config holds all service configuration.
type Config struct {
	// Server addresses
	HTTPAddr   string `yaml:"http_addr"`
	HealthAddr string `yaml:"health_addr"`

	// Request limits
	MaxSampleSize        int           `yaml:"max_sample_size"`
	RequestTimeout       time.Duration `yaml:"request_timeout"`
	CompareWarnThreshold int           `yaml:"compare_warn_threshold"`

	// Output
	PlotDir string `yaml:"plot_dir"`

	// Observability
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Methods holds default params per method id, e.g.
	//
	//	methods:
	//	  drunkard:
	//	    step_size: 0.1
	Methods map[string]map[string]any `yaml:"methods,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPAddr:             ":8080",
		HealthAddr:           ":8081",
		MaxSampleSize:        10_000_000,
		RequestTimeout:       30 * time.Second,
		CompareWarnThreshold: 100_000,
		PlotDir:              ".",
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load resolves the configuration. path may be empty, in which case
// PI_CONFIG_FILE is consulted; with neither set no file is read.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(FileEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.HTTPAddr = envOrDefault("PI_HTTP_ADDR", c.HTTPAddr)
	c.HealthAddr = envOrDefault("PI_HEALTH_ADDR", c.HealthAddr)
	c.MaxSampleSize = envIntOrDefault("PI_MAX_SAMPLE_SIZE", c.MaxSampleSize)
	c.RequestTimeout = envDurationOrDefault("PI_REQUEST_TIMEOUT", c.RequestTimeout)
	c.CompareWarnThreshold = envIntOrDefault("PI_COMPARE_WARN_THRESHOLD", c.CompareWarnThreshold)
	c.PlotDir = envOrDefault("PI_PLOT_DIR", c.PlotDir)
	c.LogLevel = envOrDefault("PI_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOrDefault("PI_LOG_FORMAT", c.LogFormat)
}

// Validate checks field ranges. It is exported so callers can re-check
// after applying flags.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("PI_HTTP_ADDR must not be empty")
	}

	if c.MaxSampleSize < 1 {
		return errors.New("PI_MAX_SAMPLE_SIZE must be at least 1")
	}

	if c.RequestTimeout < 100*time.Millisecond {
		return errors.New("PI_REQUEST_TIMEOUT must be at least 100ms")
	}

	if c.CompareWarnThreshold < 1 {
		return errors.New("PI_COMPARE_WARN_THRESHOLD must be at least 1")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("PI_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("PI_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	for name := range c.Methods {
		if _, err := estimator.ParseMethod(name); err != nil {
			return fmt.Errorf("methods: %w", err)
		}
	}

	return nil
}

// ParamsFor returns a copy of the configured default params for a method,
// or nil if none are set.
func (c *Config) ParamsFor(method string) map[string]any {
	var src map[string]any
	for name, p := range c.Methods {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(method)) {
			src = p
			break
		}
	}
	if len(src) == 0 {
		return nil
	}
	params := make(map[string]any, len(src))
	for k, v := range src {
		params[k] = v
	}
	return params
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func envDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

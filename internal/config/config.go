// Package config loads planctl settings from an optional YAML file and
// PLANCTL_* environment variables. Environment wins over the file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config covers process level configuration.
type Config struct {
	Environment    string        `yaml:"environment"`
	LogLevel       string        `yaml:"log_level"`
	BackendURL     string        `yaml:"backend_url"`
	APIToken       string        `yaml:"api_token"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	PermissionsTTL time.Duration `yaml:"permissions_ttl"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	HTTPAddr       string        `yaml:"http_addr"`
	RedisURL       string        `yaml:"redis_url"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Environment:    "production",
		LogLevel:       "info",
		BackendURL:     "http://localhost:8000/api",
		RequestTimeout: 60 * time.Second,
		PollInterval:   30 * time.Second,
		PermissionsTTL: 5 * time.Minute,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
		HTTPAddr:       ":8080",
	}
}

// Load reads path (if non-empty), applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend_url %q must be an absolute URL", c.BackendURL)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be > 0")
	}
	if c.PollInterval < time.Second {
		return errors.New("poll_interval must be at least 1s")
	}
	if c.PermissionsTTL <= 0 {
		return errors.New("permissions_ttl must be > 0")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("rate limits must be >= 0")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst == 0 {
		return errors.New("rate_limit_burst must be > 0 when rate_limit_rps is set")
	}
	return nil
}

func applyEnv(c *Config) error {
	c.Environment = envOr("PLANCTL_ENV", c.Environment)
	c.LogLevel = envOr("PLANCTL_LOG_LEVEL", c.LogLevel)
	c.BackendURL = strings.TrimRight(envOr("PLANCTL_BACKEND_URL", c.BackendURL), "/")
	c.APIToken = envOr("PLANCTL_API_TOKEN", c.APIToken)
	c.HTTPAddr = envOr("PLANCTL_HTTP_ADDR", c.HTTPAddr)
	c.RedisURL = envOr("PLANCTL_REDIS_URL", c.RedisURL)

	var err error
	if c.RequestTimeout, err = envDuration("PLANCTL_REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.PollInterval, err = envDuration("PLANCTL_POLL_INTERVAL", c.PollInterval); err != nil {
		return err
	}
	if c.PermissionsTTL, err = envDuration("PLANCTL_PERMISSIONS_TTL", c.PermissionsTTL); err != nil {
		return err
	}
	if v := os.Getenv("PLANCTL_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PLANCTL_RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = f
	}
	if v := os.Getenv("PLANCTL_RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLANCTL_RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimitBurst = n
	}
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envDuration(k string, d time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return d, nil
	}
	// bare integers are seconds
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	p, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return p, nil
}

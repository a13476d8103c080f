// Package config loads azboards settings from an optional YAML file with
// AZBOARDS_* environment overrides applied on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no explicit config path is given and it exists in the working directory.
const DefaultFile = "azboards.yaml"

const (
	DefaultHost               = "127.0.0.1"
	DefaultPort               = 8000
	DefaultBaseURL            = "https://dev.azure.com"
	DefaultBatchSize          = 100
	DefaultConcurrency        = 1
	DefaultMaxBodyBytes int64 = 1 << 20
	DefaultReadTimeout        = 15 * time.Second
	DefaultWriteTimeout       = 2 * time.Minute
	DefaultIdleTimeout        = 60 * time.Second
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
)

// ServerConfig configures the inbound HTTP boundary.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// RemoteConfig configures calls to Azure DevOps.
type RemoteConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"` // zero means no client-side timeout
	BatchSize   int           `yaml:"batch_size"`
	Concurrency int           `yaml:"concurrency"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Config is the root of azboards.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Remote RemoteConfig `yaml:"remote"`
	Log    LogConfig    `yaml:"log"`
}

// Default returns a config with every field at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.normalize()
	return cfg
}

// Load reads path (or DefaultFile when path is empty and the file exists),
// then applies environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// no config file; defaults and environment only
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg, nil
}

// Address returns the server bind address in host:port form.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func (c *Config) applyEnvOverrides() {
	if host := env("AZBOARDS_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := env("AZBOARDS_PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil && isValidPort(parsed) {
			c.Server.Port = parsed
		}
	}
	if base := env("AZBOARDS_BASE_URL"); base != "" {
		c.Remote.BaseURL = base
	}
	if timeout := env("AZBOARDS_TIMEOUT"); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil {
			c.Remote.Timeout = parsed
		}
	}
	if n := env("AZBOARDS_CONCURRENCY"); n != "" {
		if parsed, err := strconv.Atoi(n); err == nil {
			c.Remote.Concurrency = parsed
		}
	}
	if level := env("AZBOARDS_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := env("AZBOARDS_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
}

func (c *Config) normalize() {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if !isValidPort(c.Server.Port) {
		c.Server.Port = DefaultPort
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}

	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	if c.Remote.BaseURL == "" {
		c.Remote.BaseURL = DefaultBaseURL
	}
	if c.Remote.Timeout < 0 {
		c.Remote.Timeout = 0
	}
	if c.Remote.BatchSize <= 0 || c.Remote.BatchSize > DefaultBatchSize {
		c.Remote.BatchSize = DefaultBatchSize
	}
	if c.Remote.Concurrency <= 0 {
		c.Remote.Concurrency = DefaultConcurrency
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format != "console" {
		c.Log.Format = DefaultLogFormat
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}

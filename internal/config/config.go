// Package config holds the YAML configuration shared by the server and the
// CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/symsolve/agent"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Logging    LoggingConfig     `yaml:"logging"`
	Confidence agent.Confidences `yaml:"confidence"`
	Batch      BatchConfig       `yaml:"batch"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr              string `yaml:"addr"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
	ReadTimeout       string `yaml:"read_timeout"`
	WriteTimeout      string `yaml:"write_timeout"`
	IdleTimeout       string `yaml:"idle_timeout"`
	MaxBodyBytes      int64  `yaml:"max_body_bytes"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error
	Encoding string `yaml:"encoding"` // json, console
}

// BatchConfig bounds concurrent work on question batches.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: "5s",
			ReadTimeout:       "15s",
			WriteTimeout:      "30s",
			IdleTimeout:       "60s",
			MaxBodyBytes:      1 << 20,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Confidence: agent.DefaultConfidences(),
		Batch: BatchConfig{
			Concurrency: 4,
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("SYMSOLVE_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("SYMSOLVE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// ValidEncodings lists the supported log encodings.
var ValidEncodings = []string{"json", "console"}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	for name, v := range map[string]string{
		"read_header_timeout": c.Server.ReadHeaderTimeout,
		"read_timeout":        c.Server.ReadTimeout,
		"write_timeout":       c.Server.WriteTimeout,
		"idle_timeout":        c.Server.IdleTimeout,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("server.%s: %w", name, err)
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	validEncoding := false
	for _, e := range ValidEncodings {
		if c.Logging.Encoding == e {
			validEncoding = true
			break
		}
	}
	if !validEncoding {
		return fmt.Errorf("invalid logging.encoding: %s (valid: %v)", c.Logging.Encoding, ValidEncodings)
	}
	if err := c.Confidence.Validate(); err != nil {
		return fmt.Errorf("confidence: %w", err)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	return nil
}

// Timeouts returns the parsed server timeouts. Call Validate first; invalid
// values come back as zero.
func (s ServerConfig) Timeouts() (readHeader, read, write, idle time.Duration) {
	readHeader, _ = parseDuration(s.ReadHeaderTimeout)
	read, _ = parseDuration(s.ReadTimeout)
	write, _ = parseDuration(s.WriteTimeout)
	idle, _ = parseDuration(s.IdleTimeout)
	return
}

// parseDuration accepts an empty string as zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// BuildLogger builds a production zap logger at the configured level.
// verbose forces debug.
func (c *Config) BuildLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if c.Logging.Encoding != "" {
		zc.Encoding = c.Logging.Encoding
	}
	if zc.Encoding == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

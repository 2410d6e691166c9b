package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the fuxi service.
type Config struct {
	WorkDir       string        `yaml:"work_dir"`
	Listen        string        `yaml:"listen"`
	Concurrency   int           `yaml:"concurrency"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	PublishBucket string        `yaml:"publish_bucket"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		WorkDir:      "jobs",
		Listen:       ":8080",
		Concurrency:  4,
		FetchTimeout: 90 * time.Second,
	}
}

// yamlConfig is used for YAML unmarshaling with a string timeout.
type yamlConfig struct {
	WorkDir       string `yaml:"work_dir"`
	Listen        string `yaml:"listen"`
	Concurrency   int    `yaml:"concurrency"`
	FetchTimeout  string `yaml:"fetch_timeout"`
	PublishBucket string `yaml:"publish_bucket"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.WorkDir != "" {
		cfg.WorkDir = yc.WorkDir
	}
	if yc.Listen != "" {
		cfg.Listen = yc.Listen
	}
	if yc.Concurrency != 0 {
		cfg.Concurrency = yc.Concurrency
	}
	if yc.FetchTimeout != "" {
		d, err := time.ParseDuration(yc.FetchTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse fetch_timeout: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if yc.PublishBucket != "" {
		cfg.PublishBucket = yc.PublishBucket
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the FUXI_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("FUXI_WORK_DIR"); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv("FUXI_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("FUXI_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse FUXI_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	if v := os.Getenv("FUXI_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FUXI_FETCH_TIMEOUT: %w", err)
		}
		c.FetchTimeout = d
	}
	if v := os.Getenv("FUXI_PUBLISH_BUCKET"); v != "" {
		c.PublishBucket = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return errors.New("config: work_dir is required")
	}
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if c.Concurrency <= 0 {
		return errors.New("config: concurrency must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("config: fetch_timeout must be positive")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.WorkDir != "" {
		c.WorkDir = override.WorkDir
	}
	if override.Listen != "" {
		c.Listen = override.Listen
	}
	if override.Concurrency != 0 {
		c.Concurrency = override.Concurrency
	}
	if override.FetchTimeout != 0 {
		c.FetchTimeout = override.FetchTimeout
	}
	if override.PublishBucket != "" {
		c.PublishBucket = override.PublishBucket
	}
	return c
}

// Package config loads the host program settings file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given
const DefaultPath = "plugincli.yaml"

// Output formats for command results
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// HealthConfig holds the defaults of the health plugin
type HealthConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the check timeout as a duration
func (h HealthConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// AppConfig represents the host program configuration
type AppConfig struct {
	LogLevel string       `yaml:"log_level"`
	Output   string       `yaml:"output"`
	Health   HealthConfig `yaml:"health"`
}

// Default returns the configuration used when no file exists
func Default() *AppConfig {
	c := &AppConfig{}
	c.setDefaults()
	return c
}

func (c *AppConfig) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Output == "" {
		c.Output = OutputText
	}
	if c.Health.TimeoutSeconds == 0 {
		c.Health.TimeoutSeconds = 5
	}
}

// Validate checks the configuration values
func (c *AppConfig) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unsupported output format: %s", c.Output)
	}
	if c.Health.TimeoutSeconds < 0 {
		return fmt.Errorf("health timeout must not be negative: %d", c.Health.TimeoutSeconds)
	}
	return nil
}

// LoadConfig loads the configuration from the specified file. A missing
// file at the default path is not an error; the defaults are returned.
func LoadConfig(configPath string) (*AppConfig, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && configPath == DefaultPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config AppConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.setDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}
	return &config, nil
}

// SaveConfig saves the configuration to the specified file
func SaveConfig(config *AppConfig, configPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

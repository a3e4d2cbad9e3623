package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNegativeDaysOld is returned when days_old is below zero
var ErrNegativeDaysOld = errors.New("days_old must be a non-negative integer")

// Config represents the application configuration
type Config struct {
	DaysOld        int              `yaml:"days_old"`
	DryRun         bool             `yaml:"dry_run"`
	WhatIf         bool             `yaml:"what_if"`
	Verbose        bool             `yaml:"verbose"`
	LogFormat      string           `yaml:"log_format"` // console or json
	Parallelism    int              `yaml:"parallelism"`
	Audit          AuditConfig      `yaml:"audit"`
	Plan           PlanConfig       `yaml:"plan"`
	Locations      []LocationConfig `yaml:"locations"`
	ProtectedPaths []string         `yaml:"protected_paths"`
}

// AuditConfig controls where the live-mode audit trail is written
type AuditConfig struct {
	Dir       string `yaml:"dir"` // empty means the platform default
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// PlanConfig controls the dry-run plan artifact
type PlanConfig struct {
	File   string `yaml:"file"`
	Format string `yaml:"format"` // json or yaml
}

// LocationConfig describes one cleanup target
type LocationConfig struct {
	Path                      string `yaml:"path"`
	Description               string `yaml:"description"`
	RequiresElevatedPrivilege bool   `yaml:"requires_elevated_privilege"`
}

// Load loads configuration from a file
func Load(configPath string) (*Config, error) {
	// If config doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so omitted keys keep their default value
	config := GetDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DaysOld < 0 {
		return fmt.Errorf("%w (got %d)", ErrNegativeDaysOld, c.DaysOld)
	}

	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must be >= 0")
	}

	switch c.Plan.Format {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("unsupported plan format: %s", c.Plan.Format)
	}

	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.LogFormat)
	}

	if c.Plan.File != "" && filepath.Base(c.Plan.File) != c.Plan.File {
		return fmt.Errorf("plan file must be a bare file name, got %s", c.Plan.File)
	}

	if c.Audit.MaxSizeMB < 0 || c.Audit.MaxFiles < 0 {
		return fmt.Errorf("audit rotation limits must be >= 0")
	}

	for i, loc := range c.Locations {
		if loc.Path == "" {
			return fmt.Errorf("location %d has an empty path", i)
		}
	}

	for _, path := range c.ProtectedPaths {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("protected path must be absolute: %s", path)
		}
	}

	return nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "stalesweep", "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(GetDefault(), configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}

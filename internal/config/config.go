// Package config provides configuration management for the catalog tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingSource            = errors.New("catalog.source is required")
	ErrInvalidMaxAttempts       = errors.New("catalog.retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("catalog.retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("catalog.retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("catalog.retry.timeout_sec must be at least 1")
	ErrNoFacets                 = errors.New("at least one facet option group is required")
	ErrFacetMissingField        = errors.New("facet field is required")
	ErrFacetNoValues            = errors.New("facet values must not be empty")
	ErrFacetDuplicateField      = errors.New("facet field is declared more than once")
	ErrFacetDuplicateValue      = errors.New("facet value is declared more than once")
	ErrMissingOutputDir         = errors.New("output.dir is required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete catalog configuration.
type Config struct {
	Catalog CatalogConfig  `yaml:"catalog"`
	Facets  []FacetOptions `yaml:"facets"`
	Output  OutputConfig   `yaml:"output"`
	Logging LoggingConfig  `yaml:"logging"`
}

// CatalogConfig locates the upstream catalog.
type CatalogConfig struct {
	// Source is a local path (optionally .gz or .zst) or an http(s) URL.
	Source string      `yaml:"source"`
	Retry  RetryPolicy `yaml:"retry"`
}

// RetryPolicy defines retry behavior for remote catalog sources.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// FacetOptions declares the allowed values of one closed-world facet, in display order.
type FacetOptions struct {
	Field  string   `yaml:"field"`
	Values []string `yaml:"values"`
}

// OutputConfig defines export behavior.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	PrettyPrint bool   `yaml:"pretty_print"`
	Report      bool   `yaml:"report"`
	Details     bool   `yaml:"details"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Source: "catalog.json",
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
		},
		Facets: []FacetOptions{
			{Field: "contentType", Values: []string{"Structured", "Leaks", "Documents", "Mixed"}},
			{Field: "frequency", Values: []string{"daily", "weekly", "monthly", "annually", "never", "unknown"}},
		},
		Output: OutputConfig{
			Dir:         "build",
			PrettyPrint: true,
			Report:      true,
			Details:     true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from YAML file. Keys missing from the file keep their defaults.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Catalog.Source == "" {
		return ErrMissingSource
	}

	if err := c.Catalog.Retry.Validate(); err != nil {
		return err
	}

	if len(c.Facets) == 0 {
		return ErrNoFacets
	}

	fields := make(map[string]bool, len(c.Facets))

	for i, f := range c.Facets {
		if f.Field == "" {
			return fmt.Errorf("%w: facets[%d]", ErrFacetMissingField, i)
		}

		if fields[f.Field] {
			return fmt.Errorf("%w: %s", ErrFacetDuplicateField, f.Field)
		}

		fields[f.Field] = true

		if len(f.Values) == 0 {
			return fmt.Errorf("%w: %s", ErrFacetNoValues, f.Field)
		}

		values := make(map[string]bool, len(f.Values))
		for _, v := range f.Values {
			if values[v] {
				return fmt.Errorf("%w: %s=%s", ErrFacetDuplicateValue, f.Field, v)
			}

			values[v] = true
		}
	}

	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// Validate validates the retry policy.
func (rp *RetryPolicy) Validate() error {
	if rp.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if rp.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if rp.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if rp.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	return nil
}

// FacetValues returns the allowed values declared for field, or nil.
func (c *Config) FacetValues(field string) []string {
	for _, f := range c.Facets {
		if f.Field == field {
			return f.Values
		}
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Source: %s, Facets: %d, Output: %s}",
		c.Catalog.Source,
		len(c.Facets),
		c.Output.Dir,
	)
}

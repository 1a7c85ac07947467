// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for parley.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete parley configuration.
type Config struct {
	// Service is the completion service configuration.
	Service ServiceConfig `toml:"service"`

	// Storage is the local state configuration.
	Storage StorageConfig `toml:"storage"`

	// Export is the artifact export configuration.
	Export ExportConfig `toml:"export"`

	// UI holds appearance preferences.
	UI UIConfig `toml:"ui"`

	// Logging configures the diagnostics log file.
	Logging LoggingConfig `toml:"logging"`
}

// ServiceConfig contains the completion service settings.
type ServiceConfig struct {
	// BaseURL is the address of the completion service API.
	BaseURL string `toml:"base_url"`
	// TimeoutSeconds is the transport timeout for completion requests.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (s ServiceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// StorageConfig contains local state settings.
type StorageConfig struct {
	// Dir is the directory holding the state database.
	Dir string `toml:"dir"`
}

// ExportConfig contains artifact export settings.
type ExportConfig struct {
	// OutputDir is where exported artifacts are written.
	OutputDir string `toml:"output_dir"`
	// DefaultFormat is used when no format is given: pdf, docx, or markdown.
	DefaultFormat string `toml:"default_format"`
}

// UIConfig holds appearance preferences.
type UIConfig struct {
	// Theme is "light" or "dark".
	Theme string `toml:"theme"`
}

// LoggingConfig configures the rotating diagnostics log.
type LoggingConfig struct {
	// File is the log file path. Empty disables file logging.
	File string `toml:"file"`
	// MaxSizeMB is the size at which the log rotates.
	MaxSizeMB int `toml:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep.
	MaxBackups int `toml:"max_backups"`
	// MaxAgeDays is the retention of rotated files in days.
	MaxAgeDays int `toml:"max_age_days"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// BaseDir returns the parley home directory (~/.parley).
func BaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".parley"
	}
	return filepath.Join(home, ".parley")
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	base := BaseDir()
	return &Config{
		Service: ServiceConfig{
			BaseURL:        "http://localhost:5000/api",
			TimeoutSeconds: 60,
		},
		Storage: StorageConfig{
			Dir: filepath.Join(base, "state"),
		},
		Export: ExportConfig{
			OutputDir:     ".",
			DefaultFormat: "markdown",
		},
		UI: UIConfig{
			Theme: "light",
		},
		Logging: LoggingConfig{
			File:       filepath.Join(base, "logs", "parley.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the configuration, applying defaults for anything unset and
// environment overrides on top. A missing config file is not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(Path(), cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment overrides.
	if url := os.Getenv("PARLEY_SERVICE_URL"); url != "" {
		cfg.Service.BaseURL = url
	}
	if dir := os.Getenv("PARLEY_STATE_DIR"); dir != "" {
		cfg.Storage.Dir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration atomically.
func (c *Config) Save() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.AtomicWriteFile(Path(), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks the loaded values and fills gaps with defaults rather
// than failing where a default is safe.
func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service.base_url must not be empty")
	}
	if c.Service.TimeoutSeconds <= 0 {
		c.Service.TimeoutSeconds = 60
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = DefaultConfig().Storage.Dir
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "."
	}
	switch c.Export.DefaultFormat {
	case "pdf", "docx", "markdown", "md":
	case "":
		c.Export.DefaultFormat = "markdown"
	default:
		return fmt.Errorf("export.default_format %q is not one of pdf, docx, markdown", c.Export.DefaultFormat)
	}
	switch c.UI.Theme {
	case "light", "dark":
	case "":
		c.UI.Theme = "light"
	default:
		return fmt.Errorf("ui.theme %q is not one of light, dark", c.UI.Theme)
	}
	return nil
}

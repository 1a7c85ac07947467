// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Service.BaseURL != "http://localhost:5000/api" {
		t.Errorf("default base URL = %q", cfg.Service.BaseURL)
	}
	if cfg.Export.DefaultFormat != "markdown" {
		t.Errorf("default export format = %q", cfg.Export.DefaultFormat)
	}
}

func TestServiceTimeout(t *testing.T) {
	cfg := ServiceConfig{TimeoutSeconds: 30}
	if got := cfg.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", got)
	}
}

func TestValidateFillsGaps(t *testing.T) {
	cfg := &Config{
		Service: ServiceConfig{BaseURL: "http://svc:5000/api"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Service.TimeoutSeconds != 60 {
		t.Errorf("timeout defaulted to %d, want 60", cfg.Service.TimeoutSeconds)
	}
	if cfg.Export.DefaultFormat != "markdown" {
		t.Errorf("format defaulted to %q, want markdown", cfg.Export.DefaultFormat)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme defaulted to %q, want light", cfg.UI.Theme)
	}
	if cfg.Storage.Dir == "" {
		t.Error("storage dir should default, not stay empty")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Service.BaseURL = "" }},
		{"unknown format", func(c *Config) { c.Export.DefaultFormat = "xlsx" }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestConfigDecodesFromTOML(t *testing.T) {
	input := `
[service]
base_url = "http://internal:8080/api"
timeout_seconds = 15

[export]
default_format = "pdf"
output_dir = "/tmp/exports"

[ui]
theme = "dark"
`
	cfg := DefaultConfig()
	if _, err := toml.Decode(input, cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if cfg.Service.BaseURL != "http://internal:8080/api" {
		t.Errorf("base_url = %q", cfg.Service.BaseURL)
	}
	if cfg.Service.TimeoutSeconds != 15 {
		t.Errorf("timeout_seconds = %d", cfg.Service.TimeoutSeconds)
	}
	if cfg.Export.DefaultFormat != "pdf" {
		t.Errorf("default_format = %q", cfg.Export.DefaultFormat)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	// Unspecified sections keep their defaults.
	if cfg.Logging.MaxSizeMB != 10 {
		t.Errorf("logging max size = %d, want default 10", cfg.Logging.MaxSizeMB)
	}
}

func TestConfigEncodesRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UI.Theme = "dark"

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded := &Config{}
	if _, err := toml.Decode(sb.String(), decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.UI.Theme != "dark" {
		t.Errorf("round-tripped theme = %q, want dark", decoded.UI.Theme)
	}
	if decoded.Service.BaseURL != cfg.Service.BaseURL {
		t.Errorf("round-tripped base URL = %q", decoded.Service.BaseURL)
	}
}

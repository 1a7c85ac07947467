// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for parley.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location: ~/.parley/config.toml; a missing file simply
// yields the built-in defaults.
package config

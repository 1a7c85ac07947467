// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging wires the standard logger to a rotating diagnostics file.
//
// Logging in parley is diagnostics only: no failure in the core is fatal,
// so the log is where transport errors, reset structures, and renderer
// fallbacks leave their trace while the user sees an apology message or a
// downgraded artifact instead.
package logging

import (
	"io"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jeranaias/parley/internal/config"
)

// Setup directs the standard logger at the configured rotating file.
// An empty file path discards log output entirely.
func Setup(cfg config.LoggingConfig) {
	log.SetFlags(log.LstdFlags)

	if cfg.File == "" {
		log.SetOutput(io.Discard)
		return
	}

	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	})
}

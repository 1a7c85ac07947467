// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Terminal output styles for the parley CLI.
package cli

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// STYLES
// =============================================================================

var (
	// Prompt style
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	// User message heading
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)

	// Assistant message heading
	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)

	// Session marker for the current session in listings
	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	// Dimmed metadata (IDs, timestamps, counts)
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	// Error output
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)

	// Informational notices (fallback warnings, confirmations)
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))
)

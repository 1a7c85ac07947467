// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the parley application.
package util

import "strings"

// UNICODE: Rune-aware truncation preserves multi-byte characters.
// These functions handle strings correctly regardless of character encoding,
// preventing mid-character truncation that would corrupt UTF-8 strings.

// TruncateRunes truncates a string to a maximum number of runes (characters).
// This is safe for UTF-8 strings as it counts characters, not bytes.
// If the string is truncated, "..." is appended.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// IsPrintableASCII reports whether r falls in the printable ASCII range
// (space through tilde). The fixed-layout export embeds only the core Latin
// font set, so exported text is restricted to this range.
func IsPrintableASCII(r rune) bool {
	return r >= 0x20 && r <= 0x7E
}

// StripNonPrintableASCII removes every rune outside the printable ASCII
// range. This is a documented portability decision for fixed-layout export,
// not lossless sanitization: characters the embedded fonts cannot render
// are dropped rather than replaced.
func StripNonPrintableASCII(s string) string {
	// Fast path: most exported text is already plain ASCII.
	clean := true
	for _, r := range s {
		if !IsPrintableASCII(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if IsPrintableASCII(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

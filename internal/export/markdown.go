// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer produces the plain structured-text format: a title line,
// then one level-2 heading per message followed by its raw content. No
// pagination and no character stripping; content passes through verbatim.
//
// This renderer doubles as the universal fallback, so Render never fails.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a Markdown renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render converts a transcript to Markdown bytes.
func (r *MarkdownRenderer) Render(t *Transcript) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", t.Title))

	for _, entry := range t.Entries {
		sb.WriteString(fmt.Sprintf("## %s (%s)\n\n", entry.Role, entry.Timestamp))
		sb.WriteString(entry.Content)
		sb.WriteString("\n\n")
	}

	return []byte(sb.String()), nil
}

// Extension returns the file extension for Markdown.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (r *MarkdownRenderer) MimeType() string {
	return "text/markdown"
}

// Available always reports true: the fallback renderer must never be the
// reason an export produces nothing.
func (r *MarkdownRenderer) Available() bool {
	return true
}

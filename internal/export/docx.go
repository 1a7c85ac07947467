// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"
)

// Run sizes in half-points: 16pt title, 14pt message headings.
const (
	docxTitleSize   = "32"
	docxHeadingSize = "28"
)

// =============================================================================
// DOCX RENDERER
// =============================================================================

// DocxRenderer produces the structured rich-text format: one title node,
// then per message a heading node followed by one paragraph node per
// blank-line-delimited content paragraph. Content passes through without
// character stripping; the container format carries full Unicode.
type DocxRenderer struct{}

// NewDocxRenderer creates a DOCX renderer.
func NewDocxRenderer() *DocxRenderer {
	return &DocxRenderer{}
}

// Render converts a transcript to DOCX bytes.
func (r *DocxRenderer) Render(t *Transcript) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()

	// Title node. The default theme ships no style sheet, so heading
	// levels are expressed as sized bold runs.
	doc.AddParagraph().AddText(t.Title).Size(docxTitleSize).Bold()

	for _, entry := range t.Entries {
		heading := fmt.Sprintf("%s (%s)", entry.Role, entry.Timestamp)
		doc.AddParagraph().AddText(heading).Size(docxHeadingSize).Bold()

		for _, para := range splitParagraphs(entry.Content) {
			doc.AddParagraph().AddText(para)
		}
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("docx output: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for DOCX.
func (r *DocxRenderer) Extension() string {
	return ".docx"
}

// MimeType returns the MIME type for DOCX.
func (r *DocxRenderer) MimeType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Available reports renderer availability.
func (r *DocxRenderer) Available() bool {
	return true
}

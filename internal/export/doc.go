// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders chat sessions into portable document artifacts.
//
// # Key Types
//
//   - Format: Export format enumeration (PDF, DOCX, Markdown)
//   - Renderer: Capability interface one artifact format implements
//   - Dispatcher: Format dispatch with plain-text fallback
//   - Paginator: Page-aware layout engine for the fixed-layout format
//
// # Supported Formats
//
//   - PDF: Paginated fixed layout with margins and per-page footers
//   - DOCX: Structured heading/paragraph document
//   - Markdown: Plain structured text; also the universal fallback
//
// The dispatcher builds one canonical transcript per export and hands it to
// the requested renderer. When an optional renderer is unavailable or fails,
// the export downgrades to Markdown so the user always receives an artifact.
//
// # Usage
//
//	artifact, err := export.NewDispatcher().Export(session, export.FormatPDF)
//	if err == nil {
//	    path, err := export.WriteArtifact(artifact, outputDir)
//	}
package export

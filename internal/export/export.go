// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders chat sessions into portable document artifacts.
package export

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/util"
)

// AppName prefixes exported artifact filenames.
const AppName = "parley"

// =============================================================================
// FORMAT
// =============================================================================

// Format identifies an export format.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDocx     Format = "docx"
	FormatMarkdown Format = "markdown"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatMarkdown

// ParseFormat maps user input to a Format. Unknown input falls back to the
// default rather than failing: the export surface never refuses to produce
// an artifact over a typo.
func ParseFormat(s string) Format {
	switch s {
	case "pdf":
		return FormatPDF
	case "docx", "doc":
		return FormatDocx
	case "markdown", "md", "":
		return FormatMarkdown
	default:
		return DefaultFormat
	}
}

// =============================================================================
// RENDERER INTERFACE
// =============================================================================

// Renderer converts a transcript into one artifact format.
type Renderer interface {
	// Render converts the transcript to the target format.
	Render(t *Transcript) ([]byte, error)

	// Extension returns the file extension including the dot (e.g. ".pdf").
	Extension() string

	// MimeType returns the MIME type of the format.
	MimeType() string

	// Available reports whether the renderer can run. The dispatcher treats
	// an unavailable renderer exactly like a failing one: it downgrades to
	// the plain-text fallback.
	Available() bool
}

// =============================================================================
// ARTIFACT
// =============================================================================

// Artifact is the result of an export: content plus the suggested filename.
type Artifact struct {
	Filename string
	MimeType string
	Data     []byte

	// FellBack is set when the requested renderer failed and the artifact
	// was produced by the plain-text fallback instead. Warning carries the
	// user-visible explanation.
	FellBack bool
	Warning  string
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Dispatcher routes an export request to the matching renderer, falling
// back to Markdown when the preferred renderer is unavailable or fails.
type Dispatcher struct {
	renderers map[Format]Renderer
	fallback  Renderer
}

// NewDispatcher creates a dispatcher wired with the built-in renderers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		renderers: map[Format]Renderer{
			FormatPDF:  NewPDFRenderer(),
			FormatDocx: NewDocxRenderer(),
		},
		fallback: NewMarkdownRenderer(),
	}
}

// WithRenderer replaces the renderer for a format. Used by tests to force
// renderer failure.
func (d *Dispatcher) WithRenderer(f Format, r Renderer) *Dispatcher {
	d.renderers[f] = r
	return d
}

// Export renders the session in the requested format. The transcript is
// built once and shared across the primary attempt and any fallback. The
// only error return is a fallback renderer failure, which cannot happen
// with the built-in Markdown fallback.
func (d *Dispatcher) Export(sess *model.Session, format Format) (*Artifact, error) {
	t := NewTranscript(sess)

	renderer, ok := d.renderers[format]
	if !ok {
		// Markdown (and anything unregistered) goes straight to the
		// fallback renderer, which doubles as the default format.
		return d.render(t, d.fallback, "", false)
	}

	if !renderer.Available() {
		log.Printf("export: %s renderer unavailable, falling back to markdown", format)
		return d.render(t, d.fallback, fallbackWarning(format), true)
	}

	artifact, err := d.render(t, renderer, "", false)
	if err != nil {
		log.Printf("export: %s render failed: %v", format, err)
		return d.render(t, d.fallback, fallbackWarning(format), true)
	}
	return artifact, nil
}

// render runs one renderer and assembles the artifact.
func (d *Dispatcher) render(t *Transcript, r Renderer, warning string, fellBack bool) (*Artifact, error) {
	data, err := r.Render(t)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Artifact{
		Filename: Filename(r.Extension()),
		MimeType: r.MimeType(),
		Data:     data,
		FellBack: fellBack,
		Warning:  warning,
	}, nil
}

// fallbackWarning is the user-visible notice attached to downgraded exports.
func fallbackWarning(format Format) string {
	return fmt.Sprintf("Failed to generate %s. Falling back to Markdown export.", format)
}

// Filename builds the suggested artifact filename:
// <app>-conversation-<YYYY-MM-DD><ext>.
func Filename(ext string) string {
	return fmt.Sprintf("%s-conversation-%s%s", AppName, time.Now().Format("2006-01-02"), ext)
}

// WriteArtifact saves an artifact into dir and returns the written path.
func WriteArtifact(a *Artifact, dir string) (string, error) {
	path := filepath.Join(dir, a.Filename)
	if err := util.AtomicWriteFile(path, a.Data, 0644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

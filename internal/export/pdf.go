// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// =============================================================================
// PDF RENDERER
// =============================================================================

// PDFRenderer produces the paginated fixed-layout format. All layout
// decisions are made by the Paginator; this renderer only draws the
// positioned lines and the per-page footers.
type PDFRenderer struct {
	page PageMetrics
	font FontMetrics
}

// NewPDFRenderer creates a PDF renderer with the default geometry.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{
		page: DefaultPageMetrics(),
		font: DefaultFontMetrics(),
	}
}

// Render converts a transcript to PDF bytes.
func (r *PDFRenderer) Render(t *Transcript) ([]byte, error) {
	pages := NewPaginator(r.page, r.font).Paginate(t)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(t.Title, false)
	pdf.SetCreator(AppName, false)
	// The paginator owns page breaks.
	pdf.SetAutoPageBreak(false, 0)

	for _, pg := range pages {
		pdf.AddPage()

		for _, ln := range pg.Lines {
			pdf.SetFont("Helvetica", ln.Style, ln.Size)
			pdf.Text(ln.X, ln.Y, ln.Text)
		}

		// Footer with the page number, centered inside the bottom margin.
		footer := fmt.Sprintf("Page %d", pg.Number)
		pdf.SetFont("Helvetica", "", r.font.FooterSize)
		pdf.SetTextColor(100, 100, 100)
		pdf.Text((r.page.Width-pdf.GetStringWidth(footer))/2, r.page.Height-r.page.MarginBottom/2, footer)
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// MimeType returns the MIME type for PDF.
func (r *PDFRenderer) MimeType() string {
	return "application/pdf"
}

// Available reports renderer availability. The PDF backend is compiled in,
// so this only exists to satisfy the optional-renderer contract the
// dispatcher probes before dispatching.
func (r *PDFRenderer) Available() bool {
	return true
}

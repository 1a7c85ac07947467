// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// PAGE GEOMETRY
// =============================================================================

// PageMetrics describes the page geometry in millimeters.
type PageMetrics struct {
	Width        float64
	Height       float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
}

// DefaultPageMetrics returns A4 portrait geometry with the standard margins.
func DefaultPageMetrics() PageMetrics {
	return PageMetrics{
		Width:        210,
		Height:       297,
		MarginLeft:   20,
		MarginRight:  20,
		MarginTop:    20,
		MarginBottom: 25,
	}
}

// TextWidth returns the horizontal space available for text.
func (p PageMetrics) TextWidth() float64 {
	return p.Width - p.MarginLeft - p.MarginRight
}

// FontMetrics holds the point sizes of the four text styles.
type FontMetrics struct {
	TitleSize   float64
	HeadingSize float64
	BodySize    float64
	FooterSize  float64
}

// DefaultFontMetrics returns the standard export font sizes.
func DefaultFontMetrics() FontMetrics {
	return FontMetrics{
		TitleSize:   16,
		HeadingSize: 14,
		BodySize:    11,
		FooterSize:  9,
	}
}

// LineHeightRatio converts a point size to a line height. The ratio is a
// fixed layout constant, not a typographic measurement.
const LineHeightRatio = 0.5

// Vertical spacing constants, in layout units (mm).
const (
	lineGap          = 2  // extra advance after every body line
	paragraphGap     = 4  // gap after each paragraph
	messageGap       = 8  // gap after each message
	titleGap         = 5  // gap after the title line
	dateGap          = 10 // gap after the generation-date line
	headingGap       = 5  // gap after a message heading line
	messageLookahead = 30 // minimum space required to start a message
)

// Glyph measurement constants. The wrap estimate assumes the average
// advance of the embedded Helvetica at half an em; exported text is
// restricted to printable ASCII, so the approximation stays close enough
// for the line-by-line overflow recheck to absorb the error.
const (
	ptToMM     = 0.3527778
	avgAdvance = 0.5
)

// =============================================================================
// LAYOUT OUTPUT
// =============================================================================

// Line is one positioned line of text. X and Y address the text baseline.
type Line struct {
	Text  string
	X     float64
	Y     float64
	Size  float64
	Style string // "" normal, "B" bold, "I" italic
}

// Page is one finalized page of positioned lines. A line is the atomic
// layout unit: it is never split across pages.
type Page struct {
	Number int
	Lines  []Line
}

// =============================================================================
// PAGINATOR
// =============================================================================

// Paginator lays a transcript out onto fixed-size pages. It maintains a
// vertical cursor from the top margin and opens a new page whenever the
// next line would cross the bottom margin.
type Paginator struct {
	page PageMetrics
	font FontMetrics
}

// NewPaginator creates a paginator for the given geometry.
func NewPaginator(page PageMetrics, font FontMetrics) *Paginator {
	return &Paginator{page: page, font: font}
}

// layoutState tracks the cursor while a transcript is being laid out.
type layoutState struct {
	page  PageMetrics
	pages []Page
	y     float64
}

// newPage finalizes nothing (pages carry their own footers downstream) and
// opens the next page with the cursor back at the top margin.
func (st *layoutState) newPage() {
	st.pages = append(st.pages, Page{Number: len(st.pages) + 1})
	st.y = st.page.MarginTop
}

// current returns the page under construction.
func (st *layoutState) current() *Page {
	return &st.pages[len(st.pages)-1]
}

// remaining returns the vertical space left before the bottom margin.
func (st *layoutState) remaining() float64 {
	return st.page.Height - st.page.MarginBottom - st.y
}

// capacity returns the usable height of an empty page.
func (st *layoutState) capacity() float64 {
	return st.page.Height - st.page.MarginTop - st.page.MarginBottom
}

// emit places one line at the cursor without advancing it.
func (st *layoutState) emit(text string, size float64, style string) {
	pg := st.current()
	pg.Lines = append(pg.Lines, Line{
		Text:  text,
		X:     st.page.MarginLeft,
		Y:     st.y,
		Size:  size,
		Style: style,
	})
}

// Paginate lays the transcript out and returns the finalized pages.
func (p *Paginator) Paginate(t *Transcript) []Page {
	titleLH := p.font.TitleSize * LineHeightRatio
	headingLH := p.font.HeadingSize * LineHeightRatio
	bodyLH := p.font.BodySize * LineHeightRatio

	st := &layoutState{page: p.page}
	st.newPage()

	// Title and generation date open page 1.
	st.emit(t.Title, p.font.TitleSize, "B")
	st.y += titleLH + titleGap
	st.emit("Generated on: "+t.GeneratedAt.Format("2006-01-02 15:04:05"), p.font.BodySize, "I")
	st.y += bodyLH + dateGap

	for _, entry := range t.Entries {
		// A message heading near the bottom margin would orphan its first
		// paragraph; require a minimum of space before starting one.
		if st.remaining() < messageLookahead {
			st.newPage()
		}

		st.emit(entry.Role+" ("+entry.Timestamp+")", p.font.HeadingSize, "B")
		st.y += headingLH + headingGap

		for _, para := range splitParagraphs(entry.Content) {
			// Exported fixed-layout text is restricted to printable ASCII
			// so the artifact renders under the minimal embedded font set.
			// The restriction applies per line: explicit newlines are layout
			// structure, not content, and must survive the strip.
			para = stripParagraph(para)
			if strings.TrimSpace(para) == "" {
				continue
			}

			text, bold := stripHeadingMarker(para)
			style := ""
			if bold {
				style = "B"
			}

			lines := p.wrap(text)

			// The estimate is approximate; break early only when the
			// paragraph actually fits a fresh page. Paragraphs taller than
			// a page break line by line instead.
			estimate := float64(len(lines)) * (bodyLH + lineGap)
			if estimate > st.remaining() && estimate <= st.capacity() {
				st.newPage()
			}

			for _, ln := range lines {
				// Re-check per line: a line never straddles the margin.
				if st.remaining() < bodyLH {
					st.newPage()
				}
				st.emit(ln, p.font.BodySize, style)
				st.y += bodyLH + lineGap
			}

			st.y += paragraphGap
		}

		st.y += messageGap
	}

	return st.pages
}

// stripParagraph applies the printable-ASCII restriction to each line of a
// paragraph separately, preserving the newlines between them.
func stripParagraph(para string) string {
	lines := strings.Split(para, "\n")
	for i, ln := range lines {
		lines[i] = util.StripNonPrintableASCII(ln)
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// WORD WRAP
// =============================================================================

// maxLineChars returns the character budget of one body line.
func (p *Paginator) maxLineChars() int {
	charWidth := p.font.BodySize * ptToMM * avgAdvance
	n := int(p.page.TextWidth() / charWidth)
	if n < 1 {
		n = 1
	}
	return n
}

// wrap splits text into lines that fit the available text width. Explicit
// newlines are respected; within a segment words are packed greedily and
// words longer than a whole line are hard-split.
func (p *Paginator) wrap(text string) []string {
	limit := p.maxLineChars()
	var lines []string

	for _, segment := range strings.Split(text, "\n") {
		segment = strings.TrimRight(segment, " ")
		if segment == "" {
			continue
		}

		var cur strings.Builder
		curWidth := 0
		flush := func() {
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
				curWidth = 0
			}
		}

		for _, word := range strings.Fields(segment) {
			w := runewidth.StringWidth(word)

			// Hard-split words that cannot fit on any line.
			for w > limit {
				flush()
				runes := []rune(word)
				lines = append(lines, string(runes[:limit]))
				word = string(runes[limit:])
				w = runewidth.StringWidth(word)
			}
			if word == "" {
				continue
			}

			sep := 0
			if curWidth > 0 {
				sep = 1
			}
			if curWidth+sep+w > limit {
				flush()
				sep = 0
			}
			if sep == 1 {
				cur.WriteByte(' ')
				curWidth++
			}
			cur.WriteString(word)
			curWidth += w
		}
		flush()
	}

	return lines
}

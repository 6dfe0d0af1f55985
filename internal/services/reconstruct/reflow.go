package reconstruct

import (
	"strings"

	"github.com/ternarybob/docforge/internal/models"
	"github.com/ternarybob/docforge/internal/services/layout"
)

// Re-flow layout constants, in capture units. The glyph width estimate
// matches the average advance of the core fonts closely enough for a
// character budget.
const (
	reflowFontSize   = 24.0 // 12pt
	reflowLineHeight = 36.0
	reflowMargin     = 144.0 // 72pt on every side
	glyphWidthFactor = 0.5   // estimated glyph advance as a fraction of font size
)

// reflowBlocks lays raw linearized text back onto pages as synthetic
// blocks: one block per wrapped line, fixed left margin, monotonically
// increasing y, paginating at the bottom margin. A page-break marker
// line forces an immediate page advance. Page dimensions are in points.
func reflowBlocks(raw string, pageWidthPt, pageHeightPt float64) []models.TextBlock {
	pageWidth := pageWidthPt * layout.CaptureScale
	pageHeight := pageHeightPt * layout.CaptureScale
	bottom := pageHeight - reflowMargin

	usable := pageWidth - 2*reflowMargin
	budget := int(usable / (glyphWidthFactor * reflowFontSize))
	if budget < 1 {
		budget = 1
	}

	var blocks []models.TextBlock
	page := 1
	y := reflowMargin

	advance := func() {
		y += reflowLineHeight
		if y+reflowFontSize > bottom {
			page++
			y = reflowMargin
		}
	}

	emit := func(line string) {
		blocks = append(blocks, models.TextBlock{
			Text:       line,
			Page:       page,
			X:          reflowMargin,
			Y:          y,
			Width:      float64(len(line)) * glyphWidthFactor * reflowFontSize,
			Height:     reflowFontSize,
			FontFamily: "Arial",
			FontSizePt: reflowFontSize,
		})
		advance()
	}

	lastBlank := true
	for _, rawLine := range strings.Split(raw, "\n") {
		line := strings.TrimSpace(rawLine)

		if line == models.PageBreakMarker {
			page++
			y = reflowMargin
			lastBlank = true
			continue
		}

		if line == "" {
			// Paragraph gap: one blank line of vertical space
			if !lastBlank {
				advance()
			}
			lastBlank = true
			continue
		}
		lastBlank = false

		for _, wrapped := range wrapLine(line, budget) {
			emit(wrapped)
		}
	}

	return blocks
}

// wrapLine greedily packs words into lines of at most budget characters.
// A single word longer than the budget gets its own line rather than
// being split.
func wrapLine(line string, budget int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}

	var out []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= budget {
			current += " " + word
			continue
		}
		out = append(out, current)
		current = word
	}
	return append(out, current)
}

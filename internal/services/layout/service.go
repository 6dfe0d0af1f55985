// -----------------------------------------------------------------------
// Layout Extractor - positioned text blocks from a text-bearing PDF
// -----------------------------------------------------------------------

package layout

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
)

// CaptureScale is the raster scale the editor captures coordinates at.
// All TextBlock coordinates and font sizes are expressed in capture
// units (page points x CaptureScale, top-left origin) so extraction and
// reconstruction round-trip without unit conversion at the boundary.
const CaptureScale = 2.0

// Service implements interfaces.LayoutService
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.LayoutService = (*Service)(nil)

// NewService creates a new layout extraction service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// ExtractBlocks parses positioned glyph runs per page and merges them
// into logical blocks. All-or-nothing: a corrupt document surfaces a
// single extraction error and partial results are discarded.
func (s *Service) ExtractBlocks(ctx context.Context, pdfData []byte) (blocks []models.TextBlock, err error) {
	// The run parser panics on malformed cross-reference tables; fold
	// panics into the extraction error contract.
	defer func() {
		if r := recover(); r != nil {
			blocks = nil
			err = fmt.Errorf("%w: %v", models.ErrExtractionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}

	heights, err := pageHeights(pdfData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}

	pageCount := reader.NumPage()
	blocks = make([]models.TextBlock, 0, 64)

	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		pageHeight := 792.0 // US Letter fallback
		if pageNum-1 < len(heights) && heights[pageNum-1] > 0 {
			pageHeight = heights[pageNum-1]
		}

		content := page.Content()
		runs := make([]run, 0, len(content.Text))
		for _, t := range content.Text {
			if t.S == "" {
				continue
			}
			fontSize := t.FontSize
			if fontSize <= 0 {
				fontSize = 12.0
			}
			style := resolveFont(t.Font)

			// Convert bottom-left page points into top-left capture units
			runs = append(runs, run{
				Text:     t.S,
				Page:     pageNum,
				X:        t.X * CaptureScale,
				Y:        (pageHeight - t.Y - fontSize) * CaptureScale,
				Width:    t.W * CaptureScale,
				FontSize: fontSize * CaptureScale,
				Family:   style.Family,
				Bold:     style.Bold,
				Italic:   style.Italic,
			})
		}

		blocks = append(blocks, mergeRuns(runs)...)
	}

	s.logger.Debug().
		Int("pages", pageCount).
		Int("blocks", len(blocks)).
		Msg("Layout extraction complete")

	return blocks, nil
}

// ExtractText returns the document's raw text (block texts joined in
// emission order) and the page count.
func (s *Service) ExtractText(ctx context.Context, pdfData []byte) (string, int, error) {
	blocks, err := s.ExtractBlocks(ctx, pdfData)
	if err != nil {
		return "", 0, err
	}

	pageCount, err := pageCount(pdfData)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}

	var builder strings.Builder
	lastPage := 0
	for _, block := range blocks {
		if lastPage != 0 && block.Page != lastPage {
			builder.WriteString("\n\n")
		} else if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(block.Text)
		lastPage = block.Page
	}

	return builder.String(), pageCount, nil
}

// pageHeights reads per-page media box heights in points
func pageHeights(pdfData []byte) ([]float64, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdfData), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	dims, err := pdfCtx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}

	heights := make([]float64, len(dims))
	for i, dim := range dims {
		heights[i] = dim.Height
	}
	return heights, nil
}

// pageCount reads the page count via pdfcpu
func pageCount(pdfData []byte) (int, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdfData), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return pdfCtx.PageCount, nil
}

// -----------------------------------------------------------------------
// OCR Adapter - linearized text from scanned documents
// -----------------------------------------------------------------------

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
)

// Service implements interfaces.OCRService. Each RecognizeDocument call
// acquires a fresh engine and releases it before returning; engines are
// never shared across calls.
type Service struct {
	renderer interfaces.PageRenderer
	factory  interfaces.OCREngineFactory
	upscale  float64
	logger   arbor.ILogger
}

var _ interfaces.OCRService = (*Service)(nil)

// NewService creates a new OCR adapter service
func NewService(renderer interfaces.PageRenderer, factory interfaces.OCREngineFactory, upscale float64, logger arbor.ILogger) *Service {
	if upscale <= 0 {
		upscale = 1.0
	}
	return &Service{
		renderer: renderer,
		factory:  factory,
		upscale:  upscale,
		logger:   logger,
	}
}

// RecognizeDocument rasterizes every page, preprocesses each bitmap and
// runs recognition. Any page failure aborts the whole document; partial
// text is never returned.
func (s *Service) RecognizeDocument(ctx context.Context, pdfData []byte) (string, int, error) {
	pages, scaled, err := s.rasterize(ctx, pdfData)
	if err != nil {
		return "", 0, fmt.Errorf("%w: render: %v", models.ErrOCRFailed, err)
	}

	engine, err := s.factory.Acquire(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("%w: engine: %v", models.ErrOCRFailed, err)
	}
	defer engine.Close()

	// PDF pages are rendered at the upscale factor already; raster
	// uploads still need the resize pass.
	prepScale := 1.0
	if !scaled {
		prepScale = s.upscale
	}

	texts := make([]string, 0, len(pages))
	for i, page := range pages {
		prepared := preprocess(page, prepScale)
		text, err := engine.Recognize(ctx, prepared)
		if err != nil {
			return "", 0, fmt.Errorf("%w: page %d: %v", models.ErrOCRFailed, i+1, err)
		}
		texts = append(texts, text)
	}

	s.logger.Debug().
		Int("pages", len(pages)).
		Msg("OCR recognition complete")

	return strings.Join(texts, "\n"+models.PageBreakMarker+"\n"), len(pages), nil
}

// rasterize returns one bitmap per page. Raster image uploads become a
// single-page document; PDFs go through the page renderer. The second
// result reports whether the bitmaps were already rendered at the
// upscale factor.
func (s *Service) rasterize(ctx context.Context, data []byte) ([]image.Image, bool, error) {
	if strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, false, fmt.Errorf("decode image: %w", err)
		}
		return []image.Image{img}, false, nil
	}

	pages, err := s.renderer.RenderPages(ctx, data, s.upscale)
	if err != nil {
		return nil, false, err
	}
	return pages, true, nil
}

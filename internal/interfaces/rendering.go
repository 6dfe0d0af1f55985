package interfaces

import (
	"context"
	"image"
)

// PageRenderer rasterizes PDF pages to bitmaps. Rendering internals are
// an external capability; implementations wrap an external renderer and
// tests substitute fakes.
type PageRenderer interface {
	// RenderPages rasterizes every page at the given scale factor
	RenderPages(ctx context.Context, pdfData []byte, scale float64) ([]image.Image, error)
}

// OCREngine recognizes text in a single preprocessed page image.
// Engines are acquired per extraction call and released before the call
// returns; they are never shared across concurrent calls.
type OCREngine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
	// Close releases engine resources. Must be called on every exit path.
	Close() error
}

// OCREngineFactory opens a fresh engine for one extraction call
type OCREngineFactory interface {
	Acquire(ctx context.Context) (OCREngine, error)
}

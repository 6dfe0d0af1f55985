package ocr

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
)

type fakeRenderer struct {
	pages []image.Image
	err   error
	scale float64
}

func (f *fakeRenderer) RenderPages(ctx context.Context, pdfData []byte, scale float64) ([]image.Image, error) {
	f.scale = scale
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type fakeEngine struct {
	texts   []string
	failAt  int // 1-based page index that fails, 0 for never
	calls   int
	closed  bool
}

func (f *fakeEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	f.calls++
	if f.failAt != 0 && f.calls == f.failAt {
		return "", fmt.Errorf("recognition error")
	}
	if f.calls <= len(f.texts) {
		return f.texts[f.calls-1], nil
	}
	return "", nil
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

type fakeFactory struct {
	engine *fakeEngine
	err    error
}

func (f *fakeFactory) Acquire(ctx context.Context) (interfaces.OCREngine, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.engine, nil
}

func testPage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 3)
	}
	return img
}

func TestRecognizeDocument_JoinsPagesWithMarker(t *testing.T) {
	renderer := &fakeRenderer{pages: []image.Image{testPage(), testPage()}}
	engine := &fakeEngine{texts: []string{"first page", "second page"}}
	service := NewService(renderer, &fakeFactory{engine: engine}, 2.0, arbor.NewLogger())

	text, pageCount, err := service.RecognizeDocument(context.Background(), []byte("%PDF-1.4 fake"))
	require.NoError(t, err)

	assert.Equal(t, 2, pageCount)
	assert.Equal(t, "first page\n"+models.PageBreakMarker+"\nsecond page", text)
	assert.Equal(t, 2.0, renderer.scale)
	assert.True(t, engine.closed, "engine must be released after the call")
}

func TestRecognizeDocument_PageFailureAbortsDocument(t *testing.T) {
	renderer := &fakeRenderer{pages: []image.Image{testPage(), testPage(), testPage()}}
	engine := &fakeEngine{texts: []string{"one", "two", "three"}, failAt: 2}
	service := NewService(renderer, &fakeFactory{engine: engine}, 2.0, arbor.NewLogger())

	text, pageCount, err := service.RecognizeDocument(context.Background(), []byte("%PDF-1.4 fake"))
	require.Error(t, err)

	assert.ErrorIs(t, err, models.ErrOCRFailed)
	assert.Empty(t, text, "partial text must not leak")
	assert.Zero(t, pageCount)
	assert.True(t, engine.closed, "engine must be released on failure paths too")
}

func TestRecognizeDocument_RenderFailure(t *testing.T) {
	renderer := &fakeRenderer{err: fmt.Errorf("renderer unavailable")}
	service := NewService(renderer, &fakeFactory{engine: &fakeEngine{}}, 2.0, arbor.NewLogger())

	_, _, err := service.RecognizeDocument(context.Background(), []byte("%PDF-1.4 fake"))
	assert.ErrorIs(t, err, models.ErrOCRFailed)
}

func TestRecognizeDocument_EngineAcquireFailure(t *testing.T) {
	renderer := &fakeRenderer{pages: []image.Image{testPage()}}
	service := NewService(renderer, &fakeFactory{err: fmt.Errorf("binary missing")}, 2.0, arbor.NewLogger())

	_, _, err := service.RecognizeDocument(context.Background(), []byte("%PDF-1.4 fake"))
	assert.ErrorIs(t, err, models.ErrOCRFailed)
}

func TestPreprocess_NormalizesContrast(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 100 + uint8(i) // narrow band around mid gray
	}

	out := preprocess(img, 1.0)
	gray, ok := out.(*image.Gray)
	require.True(t, ok)

	var min, max uint8 = 255, 0
	for _, p := range gray.Pix {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	assert.Equal(t, uint8(0), min, "histogram should stretch to black")
	assert.Equal(t, uint8(255), max, "histogram should stretch to white")
}

func TestPreprocess_UpscaleGrowsImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), B: 128, A: 255})
		}
	}

	out := preprocess(img, 2.0)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())
}

package layout

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/models"
)

func buildPDF(t *testing.T, pageTexts ...string) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "Letter", "")
	for _, text := range pageTexts {
		pdf.AddPage()
		if text != "" {
			pdf.SetFont("Helvetica", "", 12)
			pdf.Text(72, 100, text)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func TestExtractBlocks_CaptureUnitConversion(t *testing.T) {
	service := NewService(arbor.NewLogger())

	blocks, err := service.ExtractBlocks(context.Background(), buildPDF(t, "Hello World"))
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.Equal(t, "Hello World", b.Text)
	assert.Equal(t, 1, b.Page)
	// Drawn at 72pt left, baseline 100pt from the top, 12pt Helvetica;
	// capture units are page points at 2x with a top-left origin.
	assert.InDelta(t, 144.0, b.X, 1.0)
	assert.InDelta(t, (100.0-12.0)*2, b.Y, 4.0)
	assert.InDelta(t, 24.0, b.FontSizePt, 0.5)
	assert.Equal(t, "Arial", b.FontFamily)
	assert.False(t, b.IsBold)
}

func TestExtractText_JoinsPagesAndCountsThem(t *testing.T) {
	service := NewService(arbor.NewLogger())

	text, pageCount, err := service.ExtractText(context.Background(),
		buildPDF(t, "First page", "Second page"))
	require.NoError(t, err)

	assert.Equal(t, 2, pageCount)
	assert.Contains(t, text, "First page")
	assert.Contains(t, text, "Second page")
	assert.Contains(t, text, "\n\n", "page transition inserts a paragraph gap")
}

func TestExtractBlocks_MalformedInput(t *testing.T) {
	service := NewService(arbor.NewLogger())

	_, err := service.ExtractBlocks(context.Background(), []byte("not a pdf at all"))
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
}

func TestExtractBlocks_BoldStyleSurvives(t *testing.T) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()
	pdf.SetFont("Times", "B", 14)
	pdf.Text(72, 120, "Heading")
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))

	service := NewService(arbor.NewLogger())
	blocks, err := service.ExtractBlocks(context.Background(), buf.Bytes())
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	assert.Equal(t, "Times New Roman", blocks[0].FontFamily)
	assert.True(t, blocks[0].IsBold)
}

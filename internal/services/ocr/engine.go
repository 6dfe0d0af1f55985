package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ternarybob/docforge/internal/interfaces"
)

// tesseractEngine invokes the external tesseract binary for one
// extraction call. Engines are single-use: Acquire returns a fresh
// instance with its own scratch directory, Close tears it down. The
// engine is never shared across concurrent calls.
type tesseractEngine struct {
	binary   string
	language string
	workDir  string
	closed   bool
}

// TesseractFactory implements interfaces.OCREngineFactory
type TesseractFactory struct {
	Binary   string
	Language string
}

var _ interfaces.OCREngineFactory = (*TesseractFactory)(nil)

// Acquire opens a fresh engine with a private scratch directory
func (f *TesseractFactory) Acquire(ctx context.Context) (interfaces.OCREngine, error) {
	binary := f.Binary
	if binary == "" {
		binary = "tesseract"
	}
	language := f.Language
	if language == "" {
		language = "eng"
	}

	workDir := filepath.Join(os.TempDir(), "docforge-ocr", uuid.New().String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create OCR scratch directory: %w", err)
	}

	return &tesseractEngine{
		binary:   binary,
		language: language,
		workDir:  workDir,
	}, nil
}

// Recognize runs tesseract over one page image
func (e *tesseractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if e.closed {
		return "", fmt.Errorf("ocr engine already closed")
	}

	inputPath := filepath.Join(e.workDir, "page.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}
	if err := os.WriteFile(inputPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write page image: %w", err)
	}

	// "stdout" makes tesseract print recognized text instead of
	// writing an output file
	cmd := exec.CommandContext(ctx, e.binary, inputPath, "stdout", "-l", e.language)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(out.String()), nil
}

// Close releases the engine's scratch directory
func (e *tesseractEngine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return os.RemoveAll(e.workDir)
}

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
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ternarybob/docforge/internal/interfaces"
)

// PopplerRenderer rasterizes PDF pages through the external pdftoppm
// binary. Page rendering internals are outside this codebase; only the
// invocation seam lives here.
type PopplerRenderer struct {
	Binary string
}

var _ interfaces.PageRenderer = (*PopplerRenderer)(nil)

// baseDPI is the nominal render resolution before the upscale factor
const baseDPI = 150

// RenderPages rasterizes every page at the given scale factor
func (r *PopplerRenderer) RenderPages(ctx context.Context, pdfData []byte, scale float64) ([]image.Image, error) {
	binary := r.Binary
	if binary == "" {
		binary = "pdftoppm"
	}
	if scale <= 0 {
		scale = 1.0
	}

	workDir := filepath.Join(os.TempDir(), "docforge-render", uuid.New().String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create render scratch directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, "source.pdf")
	if err := os.WriteFile(inputPath, pdfData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write source PDF: %w", err)
	}

	dpi := int(baseDPI * scale)
	outPrefix := filepath.Join(workDir, "page")
	cmd := exec.CommandContext(ctx, binary, "-png", "-r", strconv.Itoa(dpi), inputPath, outPrefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list rendered pages: %w", err)
	}

	var pageFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "page") && strings.HasSuffix(name, ".png") {
			pageFiles = append(pageFiles, name)
		}
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order
	sort.Strings(pageFiles)

	images := make([]image.Image, 0, len(pageFiles))
	for _, name := range pageFiles {
		data, err := os.ReadFile(filepath.Join(workDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read rendered page %s: %w", name, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode rendered page %s: %w", name, err)
		}
		images = append(images, img)
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("renderer produced no pages")
	}

	return images, nil
}

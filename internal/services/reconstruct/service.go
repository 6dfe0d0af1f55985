// -----------------------------------------------------------------------
// Document Reconstructor - editable surfaces and full rebuilds
// -----------------------------------------------------------------------

package reconstruct

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/common"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
	"github.com/ternarybob/docforge/internal/services/layout"
)

// sparseBlockThreshold triggers the re-flow fallback: fewer positioned
// elements than this plus non-trivial raw text means the source was
// scanned and positions are unusable.
const sparseBlockThreshold = 3

// Service implements interfaces.ReconstructService
type Service struct {
	objects   interfaces.ObjectStorage
	scheduler interfaces.SchedulerService
	renderer  interfaces.PageRenderer
	ttl       time.Duration
	logger    arbor.ILogger
}

var _ interfaces.ReconstructService = (*Service)(nil)

// NewService creates a new document reconstruction service. Emitted
// artifacts are handed to the scheduler for time-boxed deletion.
func NewService(objects interfaces.ObjectStorage, scheduler interfaces.SchedulerService, renderer interfaces.PageRenderer, ttl time.Duration, logger arbor.ILogger) *Service {
	return &Service{
		objects:   objects,
		scheduler: scheduler,
		renderer:  renderer,
		ttl:       ttl,
		logger:    logger,
	}
}

type pageSize struct {
	W, H float64
}

// BuildEditableSurface clones the source page dimensions with a solid
// white background and no text, producing a surface the editor draws
// captured elements over.
func (s *Service) BuildEditableSurface(ctx context.Context, sourceKey, organizationID string) (*interfaces.ReconstructResult, error) {
	source, err := s.objects.DownloadBytes(ctx, sourceKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrSourceNotFound, sourceKey, err)
	}

	sizes, err := pageSizes(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read source page dimensions: %w", err)
	}

	pdf := newDocument(sizes[0])
	for _, size := range sizes {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.W, Ht: size.H})
		pdf.SetFillColor(255, 255, 255)
		pdf.Rect(0, 0, size.W, size.H, "F")
	}

	return s.emit(ctx, pdf, organizationID, common.ArtifactEditable, len(sizes))
}

// RebuildDocument redraws every active element over the original page
// imagery. One element failing to draw is logged and skipped; only a
// missing source aborts the rebuild.
func (s *Service) RebuildDocument(ctx context.Context, req interfaces.ReconstructRequest) (*interfaces.ReconstructResult, error) {
	source, err := s.objects.DownloadBytes(ctx, req.SourceKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrSourceNotFound, req.SourceKey, err)
	}

	sizes, err := pageSizes(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read source page dimensions: %w", err)
	}

	backgrounds, err := s.renderer.RenderPages(ctx, source, layout.CaptureScale)
	if err != nil {
		// Rebuild still works without imagery, the pages just lose the
		// original background.
		s.logger.Warn().Err(err).Msg("Page rendering failed; rebuilding without backgrounds")
		backgrounds = nil
	}

	elements := req.TextElements
	if len(elements) < sparseBlockThreshold && strings.TrimSpace(req.RawText) != "" {
		elements = s.reflowElements(req.RawText, sizes[0])
	}

	deleted := make(map[string]bool, len(req.Deleted))
	for _, d := range req.Deleted {
		deleted[elementKey(d.ID, d.Page)] = true
	}

	pageCount := len(sizes)
	for _, el := range elements {
		if el.Page > pageCount {
			pageCount = el.Page
		}
	}
	for _, el := range req.ImageElements {
		if el.Page > pageCount {
			pageCount = el.Page
		}
	}

	pdf := newDocument(sizes[0])
	for page := 1; page <= pageCount; page++ {
		size := sizes[len(sizes)-1]
		if page-1 < len(sizes) {
			size = sizes[page-1]
		}
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.W, Ht: size.H})

		if page-1 < len(backgrounds) {
			if err := drawBackground(pdf, backgrounds[page-1], page, size); err != nil {
				s.logger.Warn().Err(err).Int("page", page).Msg("Failed to embed page background")
			}
		}

		for _, el := range elements {
			if el.Page != page || deleted[elementKey(el.ID, el.Page)] {
				continue
			}
			if err := drawText(pdf, el, size); err != nil {
				s.logger.Warn().
					Err(fmt.Errorf("%w: %v", models.ErrElementDrawFailed, err)).
					Str("element_id", el.ID).
					Int("page", page).
					Msg("Skipping text element")
			}
		}

		for _, el := range req.ImageElements {
			if el.Page != page {
				continue
			}
			if err := drawImage(pdf, el); err != nil {
				s.logger.Warn().
					Err(fmt.Errorf("%w: %v", models.ErrElementDrawFailed, err)).
					Str("element_id", el.ID).
					Int("page", page).
					Msg("Skipping image element")
			}
		}
	}

	return s.emit(ctx, pdf, req.OrganizationID, common.ArtifactEdited, pageCount)
}

// reflowElements synthesizes positioned elements from linearized text
func (s *Service) reflowElements(raw string, size pageSize) []models.TextElement {
	blocks := reflowBlocks(raw, size.W, size.H)
	s.logger.Info().
		Int("blocks", len(blocks)).
		Msg("Positioned elements too sparse; re-flowing raw text")

	elements := make([]models.TextElement, 0, len(blocks))
	for _, b := range blocks {
		elements = append(elements, models.TextElement{
			TextBlock: b,
			ID:        common.NewElementID(),
			TextAlign: models.AlignLeft,
		})
	}
	return elements
}

// emit serializes the document, uploads it under the artifact naming
// convention and schedules its retention.
func (s *Service) emit(ctx context.Context, pdf *fpdf.Fpdf, organizationID string, purpose common.ArtifactPurpose, pageCount int) (*interfaces.ReconstructResult, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	now := time.Now()
	key := common.ArtifactKey(organizationID, purpose, now)
	if err := s.objects.UploadBytes(ctx, key, buf.Bytes(), "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to upload artifact: %w", err)
	}

	expires := now.Add(s.ttl)
	if err := s.scheduler.ScheduleDeletion(ctx, key, expires); err != nil {
		return nil, fmt.Errorf("failed to schedule artifact retention: %w", err)
	}

	s.logger.Info().
		Str("key", key).
		Int("pages", pageCount).
		Int("size", buf.Len()).
		Msg("Artifact emitted")

	return &interfaces.ReconstructResult{
		ArtifactKey: key,
		PageCount:   pageCount,
		ExpiresAt:   expires,
	}, nil
}

func elementKey(id string, page int) string {
	return fmt.Sprintf("%s\x00%d", id, page)
}

// newDocument builds an empty point-unit document with no margins and
// no automatic page breaks; every page is added explicitly.
func newDocument(first pageSize) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: first.W, Ht: first.H},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// drawBackground embeds a rendered page image, stretched to the page
func drawBackground(pdf *fpdf.Fpdf, img image.Image, page int, size pageSize) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode page background: %w", err)
	}

	name := fmt.Sprintf("bg-%d", page)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, &buf)
	pdf.ImageOptions(name, 0, 0, size.W, size.H, false, opts, 0, "")
	return nil
}

// drawText draws one element at its captured position
func drawText(pdf *fpdf.Fpdf, el models.TextElement, size pageSize) error {
	if el.Text == "" {
		return nil
	}
	if !isFinite(el.X) || !isFinite(el.Y) || !isFinite(el.FontSizePt) || el.FontSizePt <= 0 {
		return fmt.Errorf("invalid element geometry x=%v y=%v fontSize=%v", el.X, el.Y, el.FontSizePt)
	}

	g := elementGeometry(el.X, el.Y, el.FontSizePt, size.H)
	name, style := pdfFont(el.FontFamily, el.IsBold, el.IsItalic)
	pdf.SetFont(name, style, g.FontSize)
	pdf.SetTextColor(int(el.Color.R), int(el.Color.G), int(el.Color.B))

	textWidth := pdf.GetStringWidth(el.Text)
	x := g.X
	boxWidth := el.Width / layout.CaptureScale
	switch el.TextAlign {
	case models.AlignCenter:
		x += (boxWidth - textWidth) / 2
	case models.AlignRight:
		x += boxWidth - textWidth
	}

	y := g.yTop(size.H)

	rotated := el.AngleDeg != 0
	if rotated {
		pdf.TransformBegin()
		pdf.TransformRotate(-el.AngleDeg, x, y)
	}

	pdf.Text(x, y, el.Text)

	if el.IsUnderline {
		pdf.SetDrawColor(int(el.Color.R), int(el.Color.G), int(el.Color.B))
		pdf.SetLineWidth(0.05 * g.FontSize)
		pdf.Line(x, y+2, x+textWidth, y+2)
	}

	if rotated {
		pdf.TransformEnd()
	}
	return nil
}

// drawImage draws one additive image or signature element
func drawImage(pdf *fpdf.Fpdf, el models.ImageElement) error {
	data, imageType, err := decodePixelData(el.PixelData)
	if err != nil {
		return err
	}

	scaleX, scaleY := el.ScaleX, el.ScaleY
	if scaleX == 0 {
		scaleX = 1
	}
	if scaleY == 0 {
		scaleY = 1
	}

	x := el.X / layout.CaptureScale
	y := el.Y / layout.CaptureScale
	w := el.Width * scaleX / layout.CaptureScale
	h := el.Height * scaleY / layout.CaptureScale
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid image dimensions %vx%v", w, h)
	}

	name := "el-" + el.ID
	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))

	rotated := el.AngleDeg != 0
	if rotated {
		pdf.TransformBegin()
		pdf.TransformRotate(-el.AngleDeg, x, y)
	}
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if rotated {
		pdf.TransformEnd()
	}
	return nil
}

// decodePixelData unwraps a data URL or bare base64 payload and
// validates it decodes as a supported image before the drawing layer
// ever sees it.
func decodePixelData(pixelData string) ([]byte, string, error) {
	payload := pixelData
	if idx := strings.Index(payload, ","); idx != -1 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image payload: %w", err)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, "", fmt.Errorf("unreadable image payload: %w", err)
	}

	switch mimetype.Detect(data).String() {
	case "image/png":
		return data, "PNG", nil
	case "image/jpeg":
		return data, "JPG", nil
	case "image/gif":
		return data, "GIF", nil
	default:
		return nil, "", fmt.Errorf("unsupported image type %s", mimetype.Detect(data).String())
	}
}

// pageSizes reads per-page media box dimensions in points
func pageSizes(pdfData []byte) ([]pageSize, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdfData), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	dims, err := pdfCtx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	sizes := make([]pageSize, len(dims))
	for i, dim := range dims {
		sizes[i] = pageSize{W: dim.Width, H: dim.Height}
	}
	return sizes, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

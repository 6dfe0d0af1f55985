package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/docforge/internal/models"
)

// DocumentClassifier decides TEXT / SCANNED / IMAGE from bytes + mime.
// Pure function: identical input always yields the same type; malformed
// input classifies as SCANNED rather than erroring.
type DocumentClassifier interface {
	Classify(data []byte, mimeType string) models.DocumentType
}

// LayoutService converts a text-bearing PDF into positioned TextBlocks
type LayoutService interface {
	ExtractBlocks(ctx context.Context, pdfData []byte) ([]models.TextBlock, error)
	ExtractText(ctx context.Context, pdfData []byte) (string, int, error)
}

// OCRService rasterizes every page and runs the OCR engine, returning
// linearized text with a page-break marker between pages.
type OCRService interface {
	RecognizeDocument(ctx context.Context, pdfData []byte) (string, int, error)
}

// EntityService detects named entities and explicit placeholders
type EntityService interface {
	ExtractEntities(ctx context.Context, text string) ([]models.Entity, error)
}

// FieldService derives template fill-in fields from raw text
type FieldService interface {
	DetectFields(text string) []models.ExtractedField
}

// ReconstructRequest carries the edited element sets for a full rebuild.
// RawText backs the re-flow fallback when positioned elements are too
// sparse to be useful, which happens for scanned sources.
type ReconstructRequest struct {
	SourceKey      string
	OrganizationID string
	TextElements   []models.TextElement
	ImageElements  []models.ImageElement
	Deleted        []models.DeletedElement
	RawText        string
}

// ReconstructResult reports the emitted artifact
type ReconstructResult struct {
	ArtifactKey string
	PageCount   int
	ExpiresAt   time.Time
}

// ReconstructService produces new PDFs from original page imagery plus
// edited element sets
type ReconstructService interface {
	// BuildEditableSurface clones page dimensions with a blank background
	BuildEditableSurface(ctx context.Context, sourceKey, organizationID string) (*ReconstructResult, error)
	// RebuildDocument redraws every active element over the original pages
	RebuildDocument(ctx context.Context, req ReconstructRequest) (*ReconstructResult, error)
}

// SchedulerService runs the artifact retention cleanup
type SchedulerService interface {
	Start() error
	Stop() error
	// ScheduleDeletion registers an artifact for deletion at expiresAt.
	// Negative delays (already expired) delete immediately.
	ScheduleDeletion(ctx context.Context, artifactKey string, expiresAt time.Time) error
}

package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/docforge/internal/models"
)

// ObjectStorage is a blocking byte-addressable store keyed by opaque strings
type ObjectStorage interface {
	DownloadBytes(ctx context.Context, key string) ([]byte, error)
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// TemplateStorage reads/writes template records by primary key
type TemplateStorage interface {
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	SaveTemplate(ctx context.Context, tpl *models.Template) error
	DeleteTemplate(ctx context.Context, id string) error
}

// JobStorage reads/writes processing job records. The queue worker pool
// is the single writer of job status.
type JobStorage interface {
	GetJob(ctx context.Context, id string) (*models.ProcessingJob, error)
	SaveJob(ctx context.Context, job *models.ProcessingJob) error
}

// FieldStorage persists detected template fields
type FieldStorage interface {
	SaveFields(ctx context.Context, templateID string, fields []models.ExtractedField) error
	GetFields(ctx context.Context, templateID string) ([]models.ExtractedField, error)
}

// RetentionStorage persists scheduled artifact deletions
type RetentionStorage interface {
	SaveRetention(ctx context.Context, rec *models.RetentionRecord) error
	DeleteRetention(ctx context.Context, artifactID string) error
	ListExpired(ctx context.Context, now time.Time) ([]models.RetentionRecord, error)
}

// -----------------------------------------------------------------------
// Processing Job - queued unit of classification/extraction work
// -----------------------------------------------------------------------

package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the processing job state machine:
// QUEUED -> PROCESSING -> {READY | FAILED}. Terminal states are final;
// a job is never resumed, only re-enqueued as a new job.
type JobStatus string

const (
	JobQueued     JobStatus = "QUEUED"
	JobProcessing JobStatus = "PROCESSING"
	JobReady      JobStatus = "READY"
	JobFailed     JobStatus = "FAILED"
)

// IsTerminal reports whether the status admits no further transition
func (s JobStatus) IsTerminal() bool {
	return s == JobReady || s == JobFailed
}

// ProcessingJob tracks one document through the extraction pipeline.
// Status is written only by the owning queue worker.
type ProcessingJob struct {
	ID          string     `json:"id"`
	TemplateID  string     `json:"template_id"`
	SourceKey   string     `json:"source_key"`
	FileName    string     `json:"file_name"`
	MimeType    string     `json:"mime_type"`
	Status      JobStatus  `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewProcessingJob creates a queued job for a template's source document
func NewProcessingJob(templateID, sourceKey, fileName, mimeType string) *ProcessingJob {
	return &ProcessingJob{
		ID:         "job_" + uuid.New().String(),
		TemplateID: templateID,
		SourceKey:  sourceKey,
		FileName:   fileName,
		MimeType:   mimeType,
		Status:     JobQueued,
		CreatedAt:  time.Now(),
	}
}

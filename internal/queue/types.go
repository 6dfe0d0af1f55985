package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobTypeProcessTemplate runs classification/extraction for a template
const JobTypeProcessTemplate = "process_template"

// JobMessage is the flat payload enqueued for the worker pool. Matches
// ProcessingJob's input fields plus routing metadata.
type JobMessage struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	JobID      string    `json:"job_id"`
	TemplateID string    `json:"template_id"`
	SourceKey  string    `json:"source_key"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewJobMessage creates a message with a fresh message ID
func NewJobMessage(jobType, jobID, templateID, sourceKey, fileName, mimeType string) *JobMessage {
	return &JobMessage{
		ID:         uuid.New().String(),
		Type:       jobType,
		JobID:      jobID,
		TemplateID: templateID,
		SourceKey:  sourceKey,
		FileName:   fileName,
		MimeType:   mimeType,
		CreatedAt:  time.Now(),
	}
}

// ToJSON serializes the message for queue persistence
func (m *JobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON deserializes a persisted message body
func FromJSON(data []byte) (*JobMessage, error) {
	var m JobMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

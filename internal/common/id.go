package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewTemplateID generates a unique template ID with the "tpl_" prefix
func NewTemplateID() string {
	return "tpl_" + uuid.New().String()
}

// NewJobID generates a unique processing job ID with the "job_" prefix
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// NewElementID generates a unique element ID with the "el_" prefix
func NewElementID() string {
	return "el_" + uuid.New().String()
}

// ArtifactPurpose distinguishes generated artifacts by their role
type ArtifactPurpose string

const (
	ArtifactEditable ArtifactPurpose = "editable" // blank overlay used as an editing surface
	ArtifactEdited   ArtifactPurpose = "edited"   // full rebuild with applied elements
)

// ArtifactKey builds the storage key for a reconstructed PDF:
// templates/{organizationId}/{purpose}-{unixMillis}.pdf
func ArtifactKey(organizationID string, purpose ArtifactPurpose, now time.Time) string {
	return fmt.Sprintf("templates/%s/%s-%d.pdf", organizationID, purpose, now.UnixMilli())
}

package models

import "time"

// RetentionRecord schedules deletion of a time-boxed generated artifact.
// Created when the reconstructor emits a PDF; deleted by the cleanup
// scheduler at or after ExpiresAt; never mutated.
type RetentionRecord struct {
	ArtifactID string    `json:"artifact_id"` // object storage key
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

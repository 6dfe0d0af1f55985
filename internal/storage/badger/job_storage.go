package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// JobStorage implements interfaces.JobStorage for Badger
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.JobStorage = (*JobStorage)(nil)

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) *JobStorage {
	return &JobStorage{db: db, logger: logger}
}

// GetJob returns the processing job by id
func (s *JobStorage) GetJob(ctx context.Context, id string) (*models.ProcessingJob, error) {
	var job models.ProcessingJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("job %s not found", id)
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return &job, nil
}

// SaveJob upserts a processing job record. Status transitions are owned
// by the queue worker; this layer only persists what it is handed.
func (s *JobStorage) SaveJob(ctx context.Context, job *models.ProcessingJob) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if err := s.db.Store().Upsert(job.ID, *job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	s.logger.Trace().
		Str("job_id", job.ID).
		Str("status", string(job.Status)).
		Msg("BadgerDB: job saved")
	return nil
}

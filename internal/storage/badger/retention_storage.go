package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// RetentionStorage implements interfaces.RetentionStorage for Badger
type RetentionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.RetentionStorage = (*RetentionStorage)(nil)

// NewRetentionStorage creates a new RetentionStorage instance
func NewRetentionStorage(db *BadgerDB, logger arbor.ILogger) *RetentionStorage {
	return &RetentionStorage{db: db, logger: logger}
}

// SaveRetention records a scheduled artifact deletion
func (s *RetentionStorage) SaveRetention(ctx context.Context, rec *models.RetentionRecord) error {
	if rec.ArtifactID == "" {
		return fmt.Errorf("artifact ID is required")
	}
	if err := s.db.Store().Upsert(rec.ArtifactID, *rec); err != nil {
		return fmt.Errorf("failed to save retention record: %w", err)
	}
	s.logger.Trace().
		Str("artifact_id", rec.ArtifactID).
		Str("expires_at", rec.ExpiresAt.Format(time.RFC3339)).
		Msg("BadgerDB: retention record saved")
	return nil
}

// DeleteRetention removes a retention record after its artifact is gone
func (s *RetentionStorage) DeleteRetention(ctx context.Context, artifactID string) error {
	if err := s.db.Store().Delete(artifactID, models.RetentionRecord{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete retention record %s: %w", artifactID, err)
	}
	return nil
}

// ListExpired returns all records whose ExpiresAt is at or before now
func (s *RetentionStorage) ListExpired(ctx context.Context, now time.Time) ([]models.RetentionRecord, error) {
	var records []models.RetentionRecord
	query := badgerhold.Where("ExpiresAt").Le(now)
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list expired retention records: %w", err)
	}
	return records, nil
}

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

// fieldSet groups a template's detected fields under one key so a
// pipeline re-run replaces the whole set atomically.
type fieldSet struct {
	TemplateID string `badgerhold:"key"`
	Fields     []models.ExtractedField
}

// FieldStorage implements interfaces.FieldStorage for Badger
type FieldStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.FieldStorage = (*FieldStorage)(nil)

// NewFieldStorage creates a new FieldStorage instance
func NewFieldStorage(db *BadgerDB, logger arbor.ILogger) *FieldStorage {
	return &FieldStorage{db: db, logger: logger}
}

// SaveFields replaces all detected fields for a template
func (s *FieldStorage) SaveFields(ctx context.Context, templateID string, fields []models.ExtractedField) error {
	if templateID == "" {
		return fmt.Errorf("template ID is required")
	}
	set := fieldSet{TemplateID: templateID, Fields: fields}
	if err := s.db.Store().Upsert(templateID, set); err != nil {
		return fmt.Errorf("failed to save fields: %w", err)
	}
	s.logger.Trace().
		Str("template_id", templateID).
		Int("count", len(fields)).
		Msg("BadgerDB: fields saved")
	return nil
}

// GetFields returns the detected fields for a template, empty when none
func (s *FieldStorage) GetFields(ctx context.Context, templateID string) ([]models.ExtractedField, error) {
	var set fieldSet
	if err := s.db.Store().Get(templateID, &set); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fields for %s: %w", templateID, err)
	}
	return set.Fields, nil
}

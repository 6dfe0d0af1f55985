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

// TemplateStorage implements interfaces.TemplateStorage for Badger
type TemplateStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.TemplateStorage = (*TemplateStorage)(nil)

// NewTemplateStorage creates a new TemplateStorage instance
func NewTemplateStorage(db *BadgerDB, logger arbor.ILogger) *TemplateStorage {
	return &TemplateStorage{db: db, logger: logger}
}

// GetTemplate returns the template by id, or ErrTemplateMissing when the
// record was deleted meanwhile.
func (s *TemplateStorage) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	var tpl models.Template
	if err := s.db.Store().Get(id, &tpl); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, models.ErrTemplateMissing
		}
		return nil, fmt.Errorf("failed to get template %s: %w", id, err)
	}
	return &tpl, nil
}

// SaveTemplate upserts a template record
func (s *TemplateStorage) SaveTemplate(ctx context.Context, tpl *models.Template) error {
	if tpl.ID == "" {
		return fmt.Errorf("template ID is required")
	}
	if err := s.db.Store().Upsert(tpl.ID, *tpl); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	s.logger.Trace().Str("template_id", tpl.ID).Msg("BadgerDB: template saved")
	return nil
}

// DeleteTemplate removes a template record
func (s *TemplateStorage) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, models.Template{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}
	return nil
}

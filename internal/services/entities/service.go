// -----------------------------------------------------------------------
// Entity Extractor - trained recognizer + rule passes + placeholders
// -----------------------------------------------------------------------

package entities

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
)

// Service implements interfaces.EntityService. One instance is
// constructed at process start and shared; the trained recognizer
// initializes on first use behind a one-shot barrier, so concurrent
// callers block on the in-flight training instead of retraining.
type Service struct {
	logger arbor.ILogger

	trainOnce  sync.Once
	recognizer *recognizer
	trainErr   error
}

var _ interfaces.EntityService = (*Service)(nil)

// NewService creates a new entity extraction service. Training is
// deferred to the first ExtractEntities call.
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// trained returns the recognizer, training it on first call. A training
// failure is sticky for the process lifetime; callers fall back to the
// rule passes.
func (s *Service) trained() (*recognizer, error) {
	s.trainOnce.Do(func() {
		s.logger.Info().Msg("Training entity recognizer")
		s.recognizer, s.trainErr = newRecognizer()
		if s.trainErr != nil {
			s.logger.Warn().Err(s.trainErr).Msg("Entity recognizer training failed; statistical pass disabled")
		}
	})
	if s.trainErr != nil {
		return nil, models.ErrEntityRecognitionUnavailable
	}
	return s.recognizer, nil
}

// ExtractEntities runs the trained pass, the rule passes and explicit
// placeholder extraction, then deduplicates the union. Recognizer
// unavailability is non-fatal: the rule and placeholder passes still
// run and their results are returned.
func (s *Service) ExtractEntities(ctx context.Context, text string) ([]models.Entity, error) {
	var merged []models.Entity

	if rec, err := s.trained(); err != nil {
		s.logger.Warn().Err(err).Msg("Skipping statistical entity pass")
	} else {
		merged = append(merged, rec.recognize(text)...)
	}

	merged = append(merged, ruleEntities(text)...)
	merged = append(merged, placeholderEntities(text)...)

	result := models.DedupeEntities(merged)

	s.logger.Debug().
		Int("raw", len(merged)).
		Int("deduped", len(result)).
		Msg("Entity extraction complete")

	return result, nil
}

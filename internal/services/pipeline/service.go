// -----------------------------------------------------------------------
// Processing Pipeline - classify, extract, recognize, persist
// -----------------------------------------------------------------------

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
	"github.com/ternarybob/docforge/internal/queue"
)

// Deps carries the pipeline's collaborators
type Deps struct {
	Templates  interfaces.TemplateStorage
	Jobs       interfaces.JobStorage
	Fields     interfaces.FieldStorage
	Objects    interfaces.ObjectStorage
	Classifier interfaces.DocumentClassifier
	Layout     interfaces.LayoutService
	OCR        interfaces.OCRService
	Entities   interfaces.EntityService
	Detector   interfaces.FieldService
}

// Service runs the extraction pipeline for queued template jobs. It is
// the single writer of ProcessingJob.Status.
type Service struct {
	deps          Deps
	minTextLength int
	logger        arbor.ILogger
}

// NewService creates the pipeline service. minTextLength is the number
// of native-layer characters below which a text PDF is treated as
// scanned and routed through OCR.
func NewService(deps Deps, minTextLength int, logger arbor.ILogger) *Service {
	if minTextLength <= 0 {
		minTextLength = 100
	}
	return &Service{
		deps:          deps,
		minTextLength: minTextLength,
		logger:        logger,
	}
}

// HandleProcessTemplate is the queue handler for template processing.
// Fatal errors are recorded on the job and returned; the job record is
// always driven to a terminal state unless the template vanished.
func (s *Service) HandleProcessTemplate(ctx context.Context, msg *queue.JobMessage) error {
	tpl, err := s.deps.Templates.GetTemplate(ctx, msg.TemplateID)
	if err != nil {
		if errors.Is(err, models.ErrTemplateMissing) {
			// The owning record was deleted while the job waited; this
			// is a successful no-op, not a failure.
			s.logger.Info().
				Str("template_id", msg.TemplateID).
				Msg("Template gone before processing; skipping job")
			return nil
		}
		return s.fail(ctx, msg, fmt.Errorf("failed to load template: %w", err))
	}

	job := s.loadJob(ctx, msg)
	now := time.Now()
	job.Status = models.JobProcessing
	job.StartedAt = &now
	if err := s.deps.Jobs.SaveJob(ctx, job); err != nil {
		return s.fail(ctx, msg, fmt.Errorf("failed to mark job processing: %w", err))
	}

	if err := s.process(ctx, tpl); err != nil {
		completed := time.Now()
		job.Status = models.JobFailed
		job.Error = err.Error()
		job.CompletedAt = &completed
		if saveErr := s.deps.Jobs.SaveJob(ctx, job); saveErr != nil {
			s.logger.Error().Err(saveErr).Str("job_id", job.ID).Msg("Failed to record job failure")
		}
		return err
	}

	completed := time.Now()
	job.Status = models.JobReady
	job.CompletedAt = &completed
	if err := s.deps.Jobs.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("failed to mark job ready: %w", err)
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("template_id", tpl.ID).
		Msg("Template processed")
	return nil
}

// process runs classification, extraction, recognition and persistence
// for one template. Re-running it for an already-processed template
// overwrites prior results with identical ones.
func (s *Service) process(ctx context.Context, tpl *models.Template) error {
	data, err := s.deps.Objects.DownloadBytes(ctx, tpl.SourceKey)
	if err != nil {
		return fmt.Errorf("failed to download source %s: %w", tpl.SourceKey, err)
	}

	docType := s.deps.Classifier.Classify(data, tpl.MimeType)

	text, pageCount, err := s.extractText(ctx, docType, data)
	if err != nil {
		return err
	}

	entities, err := s.deps.Entities.ExtractEntities(ctx, text)
	if err != nil {
		// Entity recognition never fails the job
		s.logger.Warn().Err(err).Str("template_id", tpl.ID).Msg("Entity extraction failed")
		entities = nil
	}

	detected := s.deps.Detector.DetectFields(text)
	for i := range detected {
		detected[i].TemplateID = tpl.ID
	}
	if err := s.deps.Fields.SaveFields(ctx, tpl.ID, detected); err != nil {
		return fmt.Errorf("failed to persist fields: %w", err)
	}

	tpl.DocumentType = docType
	tpl.ExtractedText = text
	tpl.PageCount = pageCount
	if err := s.deps.Templates.SaveTemplate(ctx, tpl); err != nil {
		return fmt.Errorf("failed to persist template: %w", err)
	}

	s.logger.Info().
		Str("template_id", tpl.ID).
		Str("document_type", string(docType)).
		Int("pages", pageCount).
		Int("text_len", len(text)).
		Int("entities", len(entities)).
		Int("fields", len(detected)).
		Msg("Extraction complete")
	return nil
}

// extractText routes by document type: native layer for text PDFs, OCR
// otherwise. A text PDF whose native layer comes back too short is
// reclassified through OCR, since the layer is likely a watermark or a
// scan overlay.
func (s *Service) extractText(ctx context.Context, docType models.DocumentType, data []byte) (string, int, error) {
	if docType == models.DocumentTypeText {
		text, pageCount, err := s.deps.Layout.ExtractText(ctx, data)
		if err != nil {
			return "", 0, err
		}
		if len(strings.TrimSpace(text)) >= s.minTextLength {
			return text, pageCount, nil
		}
		s.logger.Debug().
			Int("text_len", len(text)).
			Msg("Native text layer too short; falling back to OCR")
	}

	return s.deps.OCR.RecognizeDocument(ctx, data)
}

// loadJob fetches the job record, rebuilding it from the message when
// the record is unreadable so redelivered jobs still reach a terminal
// state.
func (s *Service) loadJob(ctx context.Context, msg *queue.JobMessage) *models.ProcessingJob {
	job, err := s.deps.Jobs.GetJob(ctx, msg.JobID)
	if err == nil {
		return job
	}
	s.logger.Warn().Err(err).Str("job_id", msg.JobID).Msg("Job record missing; rebuilding from message")
	return &models.ProcessingJob{
		ID:         msg.JobID,
		TemplateID: msg.TemplateID,
		SourceKey:  msg.SourceKey,
		FileName:   msg.FileName,
		MimeType:   msg.MimeType,
		Status:     models.JobQueued,
		CreatedAt:  msg.CreatedAt,
	}
}

// fail drives the job to FAILED when processing could not even start
func (s *Service) fail(ctx context.Context, msg *queue.JobMessage, err error) error {
	job := s.loadJob(ctx, msg)
	completed := time.Now()
	job.Status = models.JobFailed
	job.Error = err.Error()
	job.CompletedAt = &completed
	if saveErr := s.deps.Jobs.SaveJob(ctx, job); saveErr != nil {
		s.logger.Error().Err(saveErr).Str("job_id", job.ID).Msg("Failed to record job failure")
	}
	return err
}

// -----------------------------------------------------------------------
// Application wiring - storage, queue, services, lifecycle
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/common"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
	"github.com/ternarybob/docforge/internal/queue"
	"github.com/ternarybob/docforge/internal/services/classifier"
	"github.com/ternarybob/docforge/internal/services/entities"
	"github.com/ternarybob/docforge/internal/services/fields"
	"github.com/ternarybob/docforge/internal/services/layout"
	"github.com/ternarybob/docforge/internal/services/ocr"
	"github.com/ternarybob/docforge/internal/services/pipeline"
	"github.com/ternarybob/docforge/internal/services/reconstruct"
	"github.com/ternarybob/docforge/internal/services/scheduler"
	badgerstore "github.com/ternarybob/docforge/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	db *badgerstore.BadgerDB

	// Storage
	TemplateStorage  interfaces.TemplateStorage
	JobStorage       interfaces.JobStorage
	FieldStorage     interfaces.FieldStorage
	RetentionStorage interfaces.RetentionStorage
	ObjectStorage    interfaces.ObjectStorage

	// Job execution
	QueueManager *queue.Manager
	WorkerPool   *queue.WorkerPool

	// Document services
	ClassifierService  interfaces.DocumentClassifier
	LayoutService      interfaces.LayoutService
	OCRService         interfaces.OCRService
	EntityService      interfaces.EntityService
	FieldService       interfaces.FieldService
	PipelineService    *pipeline.Service
	ReconstructService interfaces.ReconstructService
	SchedulerService   interfaces.SchedulerService
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.initQueue()
	app.initServices()

	logger.Debug().
		Int("workers", cfg.Queue.Concurrency).
		Int("rate_limit", cfg.Queue.RateLimit).
		Str("badger_path", cfg.Storage.Badger.Path).
		Msg("Application components initialized")

	return app, nil
}

func (a *App) initStorage() error {
	db, err := badgerstore.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.db = db

	a.TemplateStorage = badgerstore.NewTemplateStorage(db, a.Logger)
	a.JobStorage = badgerstore.NewJobStorage(db, a.Logger)
	a.FieldStorage = badgerstore.NewFieldStorage(db, a.Logger)
	a.RetentionStorage = badgerstore.NewRetentionStorage(db, a.Logger)
	a.ObjectStorage = badgerstore.NewObjectStorage(db, a.Logger)
	return nil
}

func (a *App) initQueue() {
	a.QueueManager = queue.NewManager(a.db.Store(), a.Logger)
	a.WorkerPool = queue.NewWorkerPool(
		a.QueueManager,
		a.Config.Queue.Concurrency,
		a.Config.Queue.PollIntervalDuration(),
		a.Config.Queue.RateLimit,
		a.Config.Queue.RateWindowDuration(),
		a.Logger,
	)
}

func (a *App) initServices() {
	renderer := &ocr.PopplerRenderer{Binary: a.Config.OCR.RendererPath}
	engines := &ocr.TesseractFactory{
		Binary:   a.Config.OCR.EnginePath,
		Language: a.Config.OCR.Language,
	}

	a.ClassifierService = classifier.NewService(a.Logger)
	a.LayoutService = layout.NewService(a.Logger)
	a.OCRService = ocr.NewService(renderer, engines, a.Config.OCR.UpscaleFactor, a.Logger)
	a.EntityService = entities.NewService(a.Logger)
	a.FieldService = fields.NewService(a.Logger)

	a.SchedulerService = scheduler.NewService(
		a.ObjectStorage,
		a.RetentionStorage,
		a.Config.Retention.SweepSchedule,
		a.Logger,
	)
	a.ReconstructService = reconstruct.NewService(
		a.ObjectStorage,
		a.SchedulerService,
		renderer,
		a.Config.Retention.ArtifactTTLDuration(),
		a.Logger,
	)

	a.PipelineService = pipeline.NewService(pipeline.Deps{
		Templates:  a.TemplateStorage,
		Jobs:       a.JobStorage,
		Fields:     a.FieldStorage,
		Objects:    a.ObjectStorage,
		Classifier: a.ClassifierService,
		Layout:     a.LayoutService,
		OCR:        a.OCRService,
		Entities:   a.EntityService,
		Detector:   a.FieldService,
	}, a.Config.OCR.MinTextLength, a.Logger)

	a.WorkerPool.RegisterHandler(queue.JobTypeProcessTemplate, a.PipelineService.HandleProcessTemplate)
}

// Start launches the worker pool and the retention scheduler
func (a *App) Start() error {
	if err := a.SchedulerService.Start(); err != nil {
		return fmt.Errorf("failed to start retention scheduler: %w", err)
	}
	if err := a.WorkerPool.Start(); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	a.Logger.Info().Msg("Application started")
	return nil
}

// SubmitTemplate stores an uploaded source document, creates the
// template and job records, and enqueues processing. The returned
// template is in QUEUED state; workers drive it to READY or FAILED.
func (a *App) SubmitTemplate(ctx context.Context, organizationID, name, fileName, mimeType string, data []byte) (*models.Template, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload for template %q", name)
	}

	tpl := &models.Template{
		ID:             common.NewTemplateID(),
		OrganizationID: organizationID,
		Name:           name,
		SourceKey:      fmt.Sprintf("sources/%s/%s", organizationID, fileName),
		FileName:       fileName,
		MimeType:       mimeType,
	}

	if err := a.ObjectStorage.UploadBytes(ctx, tpl.SourceKey, data, mimeType); err != nil {
		return nil, fmt.Errorf("failed to store source document: %w", err)
	}
	if err := a.TemplateStorage.SaveTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	job := models.NewProcessingJob(tpl.ID, tpl.SourceKey, fileName, mimeType)
	if err := a.JobStorage.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save processing job: %w", err)
	}

	msg := queue.NewJobMessage(queue.JobTypeProcessTemplate, job.ID, tpl.ID, tpl.SourceKey, fileName, mimeType)
	if err := a.QueueManager.Enqueue(ctx, msg, 0); err != nil {
		return nil, fmt.Errorf("failed to enqueue processing job: %w", err)
	}

	a.Logger.Info().
		Str("template_id", tpl.ID).
		Str("job_id", job.ID).
		Str("file_name", fileName).
		Msg("Template submitted for processing")

	return tpl, nil
}

// Close stops workers and the scheduler, then closes storage
func (a *App) Close() error {
	if a.WorkerPool != nil {
		if err := a.WorkerPool.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop worker pool")
		}
	}
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop retention scheduler")
		}
	}

	// Give in-flight handlers a moment to finish their storage writes
	time.Sleep(100 * time.Millisecond)

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Debug().Msg("Storage closed")
	}
	return nil
}

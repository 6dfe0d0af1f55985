package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/models"
	"github.com/ternarybob/docforge/internal/queue"
)

type fakeTemplates struct {
	templates map[string]*models.Template
	saved     []*models.Template
}

func (f *fakeTemplates) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return nil, models.ErrTemplateMissing
	}
	copied := *tpl
	return &copied, nil
}

func (f *fakeTemplates) SaveTemplate(ctx context.Context, tpl *models.Template) error {
	copied := *tpl
	f.templates[tpl.ID] = &copied
	f.saved = append(f.saved, &copied)
	return nil
}

func (f *fakeTemplates) DeleteTemplate(ctx context.Context, id string) error {
	delete(f.templates, id)
	return nil
}

type fakeJobs struct {
	jobs     map[string]*models.ProcessingJob
	statuses []models.JobStatus
}

func (f *fakeJobs) GetJob(ctx context.Context, id string) (*models.ProcessingJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s not found", id)
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobs) SaveJob(ctx context.Context, job *models.ProcessingJob) error {
	copied := *job
	f.jobs[job.ID] = &copied
	f.statuses = append(f.statuses, job.Status)
	return nil
}

type fakeFields struct {
	saved map[string][]models.ExtractedField
}

func (f *fakeFields) SaveFields(ctx context.Context, templateID string, fields []models.ExtractedField) error {
	f.saved[templateID] = fields
	return nil
}

func (f *fakeFields) GetFields(ctx context.Context, templateID string) ([]models.ExtractedField, error) {
	return f.saved[templateID], nil
}

type fakeObjects struct {
	store map[string][]byte
}

func (f *fakeObjects) DownloadBytes(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.store[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (f *fakeObjects) UploadBytes(ctx context.Context, key string, data []byte, contentType string) error {
	f.store[key] = data
	return nil
}

func (f *fakeObjects) Delete(ctx context.Context, key string) error {
	delete(f.store, key)
	return nil
}

func (f *fakeObjects) PresignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", nil
}

type fakeClassifier struct {
	result models.DocumentType
}

func (f *fakeClassifier) Classify(data []byte, mimeType string) models.DocumentType {
	return f.result
}

type fakeLayout struct {
	text  string
	pages int
	err   error
	calls int
}

func (f *fakeLayout) ExtractBlocks(ctx context.Context, pdfData []byte) ([]models.TextBlock, error) {
	return nil, f.err
}

func (f *fakeLayout) ExtractText(ctx context.Context, pdfData []byte) (string, int, error) {
	f.calls++
	return f.text, f.pages, f.err
}

type fakeOCR struct {
	text  string
	pages int
	err   error
	calls int
}

func (f *fakeOCR) RecognizeDocument(ctx context.Context, pdfData []byte) (string, int, error) {
	f.calls++
	return f.text, f.pages, f.err
}

type fakeEntities struct {
	entities []models.Entity
	err      error
}

func (f *fakeEntities) ExtractEntities(ctx context.Context, text string) ([]models.Entity, error) {
	return f.entities, f.err
}

type fakeDetector struct {
	fields []models.ExtractedField
}

func (f *fakeDetector) DetectFields(text string) []models.ExtractedField {
	return f.fields
}

type fixture struct {
	templates  *fakeTemplates
	jobs       *fakeJobs
	fields     *fakeFields
	objects    *fakeObjects
	classifier *fakeClassifier
	layout     *fakeLayout
	ocr        *fakeOCR
	service    *Service
	msg        *queue.JobMessage
}

func newFixture(docType models.DocumentType) *fixture {
	f := &fixture{
		templates:  &fakeTemplates{templates: map[string]*models.Template{}},
		jobs:       &fakeJobs{jobs: map[string]*models.ProcessingJob{}},
		fields:     &fakeFields{saved: map[string][]models.ExtractedField{}},
		objects:    &fakeObjects{store: map[string][]byte{}},
		classifier: &fakeClassifier{result: docType},
		layout:     &fakeLayout{},
		ocr:        &fakeOCR{},
	}

	f.templates.templates["tpl-1"] = &models.Template{
		ID:        "tpl-1",
		SourceKey: "sources/doc.pdf",
		MimeType:  "application/pdf",
	}
	f.objects.store["sources/doc.pdf"] = []byte("%PDF-1.4 test")
	f.jobs.jobs["job-1"] = &models.ProcessingJob{
		ID:         "job-1",
		TemplateID: "tpl-1",
		Status:     models.JobQueued,
	}
	f.msg = &queue.JobMessage{
		ID:         "msg-1",
		Type:       queue.JobTypeProcessTemplate,
		JobID:      "job-1",
		TemplateID: "tpl-1",
		SourceKey:  "sources/doc.pdf",
		MimeType:   "application/pdf",
	}

	f.service = NewService(Deps{
		Templates:  f.templates,
		Jobs:       f.jobs,
		Fields:     f.fields,
		Objects:    f.objects,
		Classifier: f.classifier,
		Layout:     f.layout,
		OCR:        f.ocr,
		Entities:   &fakeEntities{},
		Detector:   &fakeDetector{fields: []models.ExtractedField{{Name: "Name", Type: models.FieldText, Placeholder: "{{NAME}}"}}},
	}, 100, arbor.NewLogger())

	return f
}

func longText() string {
	s := ""
	for i := 0; i < 20; i++ {
		s += "extracted text content "
	}
	return s
}

func TestHandleProcessTemplate_TextDocumentSucceeds(t *testing.T) {
	f := newFixture(models.DocumentTypeText)
	f.layout.text = longText()
	f.layout.pages = 2

	err := f.service.HandleProcessTemplate(context.Background(), f.msg)
	require.NoError(t, err)

	assert.Equal(t, []models.JobStatus{models.JobProcessing, models.JobReady}, f.jobs.statuses)

	job := f.jobs.jobs["job-1"]
	assert.Equal(t, models.JobReady, job.Status)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.Error)

	tpl := f.templates.templates["tpl-1"]
	assert.Equal(t, models.DocumentTypeText, tpl.DocumentType)
	assert.Equal(t, f.layout.text, tpl.ExtractedText)
	assert.Equal(t, 2, tpl.PageCount)

	require.Len(t, f.fields.saved["tpl-1"], 1)
	assert.Equal(t, "tpl-1", f.fields.saved["tpl-1"][0].TemplateID)

	assert.Equal(t, 1, f.layout.calls)
	assert.Zero(t, f.ocr.calls)
}

func TestHandleProcessTemplate_ScannedDocumentUsesOCR(t *testing.T) {
	f := newFixture(models.DocumentTypeScanned)
	f.ocr.text = "recognized text"
	f.ocr.pages = 1

	err := f.service.HandleProcessTemplate(context.Background(), f.msg)
	require.NoError(t, err)

	assert.Equal(t, 1, f.ocr.calls)
	assert.Zero(t, f.layout.calls)
	assert.Equal(t, "recognized text", f.templates.templates["tpl-1"].ExtractedText)
}

func TestHandleProcessTemplate_ShortNativeLayerFallsBackToOCR(t *testing.T) {
	f := newFixture(models.DocumentTypeText)
	f.layout.text = "tiny"
	f.layout.pages = 1
	f.ocr.text = "full recognized content"
	f.ocr.pages = 1

	err := f.service.HandleProcessTemplate(context.Background(), f.msg)
	require.NoError(t, err)

	assert.Equal(t, 1, f.layout.calls)
	assert.Equal(t, 1, f.ocr.calls)
	assert.Equal(t, "full recognized content", f.templates.templates["tpl-1"].ExtractedText)
}

func TestHandleProcessTemplate_MissingTemplateExitsSuccessfully(t *testing.T) {
	f := newFixture(models.DocumentTypeText)
	delete(f.templates.templates, "tpl-1")

	err := f.service.HandleProcessTemplate(context.Background(), f.msg)
	require.NoError(t, err)

	// The job is never touched: no PROCESSING, no terminal state
	assert.Empty(t, f.jobs.statuses)
}

func TestHandleProcessTemplate_ExtractionFailureMarksJobFailed(t *testing.T) {
	f := newFixture(models.DocumentTypeText)
	f.layout.err = fmt.Errorf("%w: corrupt xref", models.ErrExtractionFailed)

	err := f.service.HandleProcessTemplate(context.Background(), f.msg)
	require.Error(t, err)

	job := f.jobs.jobs["job-1"]
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Contains(t, job.Error, "corrupt xref")
	assert.NotNil(t, job.CompletedAt)
}

func TestHandleProcessTemplate_MissingSourceMarksJobFailed(t *testing.T) {
	f := newFixture(models.DocumentTypeText)
	delete(f.objects.store, "sources/doc.pdf")

	err := f.service.HandleProcessTemplate(context.Background(), f.msg)
	require.Error(t, err)
	assert.Equal(t, models.JobFailed, f.jobs.jobs["job-1"].Status)
}

func TestHandleProcessTemplate_EntityFailureIsNonFatal(t *testing.T) {
	f := newFixture(models.DocumentTypeText)
	f.layout.text = longText()
	f.layout.pages = 1

	f.service.deps.Entities = &fakeEntities{err: models.ErrEntityRecognitionUnavailable}

	err := f.service.HandleProcessTemplate(context.Background(), f.msg)
	require.NoError(t, err)
	assert.Equal(t, models.JobReady, f.jobs.jobs["job-1"].Status)
}

func TestHandleProcessTemplate_RerunOverwritesResults(t *testing.T) {
	f := newFixture(models.DocumentTypeText)
	f.layout.text = longText()
	f.layout.pages = 3

	require.NoError(t, f.service.HandleProcessTemplate(context.Background(), f.msg))
	require.NoError(t, f.service.HandleProcessTemplate(context.Background(), f.msg))

	tpl := f.templates.templates["tpl-1"]
	assert.Equal(t, 3, tpl.PageCount)
	assert.Equal(t, models.JobReady, f.jobs.jobs["job-1"].Status)
	assert.Equal(t, 2, f.layout.calls)
}

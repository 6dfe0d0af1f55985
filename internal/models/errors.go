package models

import "errors"

// Pipeline error taxonomy. Fatal errors are caught at the job boundary,
// recorded into the job's error field, and mark the job FAILED; they
// never crash the worker. Non-fatal errors are logged and swallowed at
// the point of occurrence.
var (
	// ErrExtractionFailed: corrupt/unparseable PDF; fatal to the job,
	// partial results are discarded.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrOCRFailed: any page's OCR failure aborts the whole document.
	ErrOCRFailed = errors.New("ocr failed")

	// ErrEntityRecognitionUnavailable: statistical pass unavailable;
	// non-fatal, the pipeline continues with rule-based entities only.
	ErrEntityRecognitionUnavailable = errors.New("entity recognition unavailable")

	// ErrElementDrawFailed: non-fatal, the element is skipped and
	// reconstruction continues.
	ErrElementDrawFailed = errors.New("element draw failed")

	// ErrSourceNotFound: original bytes missing; fatal to reconstruction.
	ErrSourceNotFound = errors.New("source not found")

	// ErrTemplateMissing: the owning record was deleted meanwhile; the
	// job exits successfully without processing.
	ErrTemplateMissing = errors.New("template missing")
)

// -----------------------------------------------------------------------
// Document Classifier - TEXT / SCANNED / IMAGE from bytes and mime type
// -----------------------------------------------------------------------

package classifier

import (
	"bytes"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
)

// Font object markers inside a PDF body. Their presence indicates a
// native text layer; their absence indicates a scanned document.
var fontMarkers = [][]byte{
	[]byte("/Type/Font"),
	[]byte("/Type /Font"),
	[]byte("/Subtype/Type1"),
	[]byte("/Subtype /Type1"),
	[]byte("/Subtype/TrueType"),
	[]byte("/Subtype /TrueType"),
	[]byte("/Subtype/Type0"),
}

// Service implements interfaces.DocumentClassifier
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.DocumentClassifier = (*Service)(nil)

// NewService creates a new classifier service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Classify decides the document type. Pure function over its inputs:
// no I/O, no failure mode. Malformed input classifies as SCANNED.
func (s *Service) Classify(data []byte, mimeType string) models.DocumentType {
	mime := strings.ToLower(strings.TrimSpace(mimeType))

	// An absent or generic declared mime gets corrected from magic bytes;
	// uploads proxied through object stores often arrive as octet-stream.
	if mime == "" || mime == "application/octet-stream" {
		if detected := mimetype.Detect(data); detected != nil {
			mime = strings.ToLower(detected.String())
		}
	}

	switch {
	case strings.Contains(mime, "image/"):
		return models.DocumentTypeImage
	case strings.Contains(mime, "pdf"):
		if hasFontObjects(data) {
			return models.DocumentTypeText
		}
		return models.DocumentTypeScanned
	default:
		// Unknown mime defaults to TEXT
		return models.DocumentTypeText
	}
}

func hasFontObjects(data []byte) bool {
	for _, marker := range fontMarkers {
		if bytes.Contains(data, marker) {
			return true
		}
	}
	return false
}

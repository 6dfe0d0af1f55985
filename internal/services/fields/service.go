// -----------------------------------------------------------------------
// Field Detector - template fill-in fields from raw text
// -----------------------------------------------------------------------

package fields

import (
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/ternarybob/docforge/internal/models"
)

// Service implements interfaces.FieldService
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.FieldService = (*Service)(nil)

// NewService creates a new field detection service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

var (
	reCurlyField  = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)
	reSquareField = regexp.MustCompile(`\[([A-Za-z][A-Za-z0-9 _-]*)\]`)

	// "Name: ____" style labeled blanks
	reLabeledBlank = regexp.MustCompile(`(?i)\b(Name|Date|Address|Phone|Email)\s*:\s*_{3,}`)
)

// fieldType infers the field type from lowercase substring matching
func fieldType(name string) models.FieldType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "email"):
		return models.FieldEmail
	case strings.Contains(lower, "phone"):
		return models.FieldPhone
	case strings.Contains(lower, "date"):
		return models.FieldDate
	case strings.Contains(lower, "address"):
		return models.FieldAddress
	case strings.Contains(lower, "signature"):
		return models.FieldSignature
	case strings.Contains(lower, "amount"):
		return models.FieldAmount
	default:
		return models.FieldText
	}
}

// DetectFields finds template fill-in fields in raw text. Results are
// deduplicated by exact placeholder string; the first occurrence wins.
func (s *Service) DetectFields(text string) []models.ExtractedField {
	seen := make(map[string]bool)
	var out []models.ExtractedField

	add := func(name, placeholder string) {
		if seen[placeholder] {
			return
		}
		seen[placeholder] = true
		out = append(out, models.ExtractedField{
			Name:        strings.TrimSpace(name),
			Type:        fieldType(name),
			Placeholder: placeholder,
		})
	}

	for _, m := range reCurlyField.FindAllStringSubmatch(text, -1) {
		add(m[1], m[0])
	}
	for _, m := range reSquareField.FindAllStringSubmatch(text, -1) {
		add(m[1], m[0])
	}
	for _, m := range reLabeledBlank.FindAllStringSubmatch(text, -1) {
		add(m[1], m[0])
	}

	s.logger.Debug().
		Int("fields", len(out)).
		Msg("Field detection complete")

	return out
}

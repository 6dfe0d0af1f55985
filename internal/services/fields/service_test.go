package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/models"
)

func TestDetectFields_Patterns(t *testing.T) {
	service := NewService(arbor.NewLogger())

	text := "Dear {{CLIENT_EMAIL}},\n" +
		"Contract for [Tenant Name] begins on [Start Date].\n" +
		"Phone: _____\n" +
		"Signature: {{SIGNATURE_BLOCK}}"

	fields := service.DetectFields(text)
	require.Len(t, fields, 5)

	byPlaceholder := make(map[string]models.ExtractedField, len(fields))
	for _, f := range fields {
		byPlaceholder[f.Placeholder] = f
	}

	assert.Equal(t, models.FieldEmail, byPlaceholder["{{CLIENT_EMAIL}}"].Type)
	assert.Equal(t, models.FieldText, byPlaceholder["[Tenant Name]"].Type)
	assert.Equal(t, models.FieldDate, byPlaceholder["[Start Date]"].Type)
	assert.Equal(t, models.FieldPhone, byPlaceholder["Phone: _____"].Type)
	assert.Equal(t, models.FieldSignature, byPlaceholder["{{SIGNATURE_BLOCK}}"].Type)
}

func TestDetectFields_TypeInference(t *testing.T) {
	service := NewService(arbor.NewLogger())

	tests := []struct {
		text string
		want models.FieldType
	}{
		{"{{AMOUNT_DUE}}", models.FieldAmount},
		{"{{MAILING_ADDRESS}}", models.FieldAddress},
		{"{{ANYTHING_ELSE}}", models.FieldText},
	}

	for _, tt := range tests {
		fields := service.DetectFields(tt.text)
		require.Len(t, fields, 1, tt.text)
		assert.Equal(t, tt.want, fields[0].Type, tt.text)
	}
}

func TestDetectFields_DedupByExactPlaceholder(t *testing.T) {
	service := NewService(arbor.NewLogger())

	fields := service.DetectFields("{{NAME}} and {{NAME}} and {{name}}")

	// Dedup is by exact string, so case variants stay distinct
	require.Len(t, fields, 2)
	assert.Equal(t, "{{NAME}}", fields[0].Placeholder)
	assert.Equal(t, "{{name}}", fields[1].Placeholder)
}

func TestDetectFields_LabeledBlankRequiresKnownLabel(t *testing.T) {
	service := NewService(arbor.NewLogger())

	fields := service.DetectFields("Comments: _____ Email: _____")
	require.Len(t, fields, 1)
	assert.Equal(t, "Email", fields[0].Name)
	assert.Equal(t, models.FieldEmail, fields[0].Type)
}

func TestDetectFields_EmptyText(t *testing.T) {
	service := NewService(arbor.NewLogger())
	assert.Empty(t, service.DetectFields(""))
}

package models

// FieldType categorizes a template fill-in field
type FieldType string

const (
	FieldText      FieldType = "TEXT"
	FieldEmail     FieldType = "EMAIL"
	FieldPhone     FieldType = "PHONE"
	FieldDate      FieldType = "DATE"
	FieldAddress   FieldType = "ADDRESS"
	FieldSignature FieldType = "SIGNATURE"
	FieldAmount    FieldType = "AMOUNT"
)

// ExtractedField is a detected data-entry field derived from raw text.
// Placeholder is the exact source token (dedup key), Name its cleaned form.
type ExtractedField struct {
	TemplateID  string    `json:"template_id"`
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder"`
}

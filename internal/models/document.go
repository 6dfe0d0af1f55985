// -----------------------------------------------------------------------
// Document models - extraction output and reconstruction input
// -----------------------------------------------------------------------

package models

// DocumentType is the classification of an uploaded source document
type DocumentType string

const (
	DocumentTypeText    DocumentType = "TEXT"    // carries a native text layer
	DocumentTypeScanned DocumentType = "SCANNED" // PDF without font objects
	DocumentTypeImage   DocumentType = "IMAGE"   // raster image upload
)

// TextBlock is a positioned, styled run of text on one page, produced by
// layout extraction or synthesized by OCR re-flow. Immutable once produced.
// Coordinates use a top-left origin in capture units (2x page points).
type TextBlock struct {
	Text       string  `json:"text"`
	Page       int     `json:"page"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	FontFamily string  `json:"fontFamily"`
	FontSizePt float64 `json:"fontSize"`
	IsBold     bool    `json:"isBold"`
	IsItalic   bool    `json:"isItalic"`
}

// PageBreakMarker separates page texts in linearized OCR output. The
// reconstructor honors it when re-flowing text onto fresh pages.
const PageBreakMarker = "[[PAGE]]"

// TextAlign is the horizontal alignment of a text element
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// RGB is a 24-bit color
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// TextElement is the round-tripped, editor-mutated form of a TextBlock.
// ID is stable and page-scoped unique. Consumed exactly once by the
// reconstructor.
type TextElement struct {
	TextBlock

	ID           string    `json:"id"`
	Color        RGB       `json:"color"`
	IsUnderline  bool      `json:"isUnderline"`
	TextAlign    TextAlign `json:"textAlign"`
	AngleDeg     float64   `json:"angle"`
	VariableName string    `json:"variableName,omitempty"` // set when the element is a dynamic placeholder
}

// DeletedElement marks a text element removed by the editor
type DeletedElement struct {
	ID   string `json:"id"`
	Page int    `json:"page"`
}

// ImageElementType distinguishes plain images from signatures
type ImageElementType string

const (
	ImageTypeImage     ImageElementType = "image"
	ImageTypeSignature ImageElementType = "signature"
)

// ImageElement is an additive image or signature placed by the editor.
// PixelData is a base64 data URL or raw base64 image payload.
type ImageElement struct {
	ID        string           `json:"id"`
	Type      ImageElementType `json:"type"`
	PixelData string           `json:"pixelData"`
	X         float64          `json:"x"`
	Y         float64          `json:"y"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	ScaleX    float64          `json:"scaleX"`
	ScaleY    float64          `json:"scaleY"`
	AngleDeg  float64          `json:"angle"`
	Page      int              `json:"page"`
}

// Template is the owning record for an uploaded document. The relational
// metadata store is an external collaborator; this is the minimal
// projection the pipeline reads and writes.
type Template struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id"`
	Name           string       `json:"name"`
	SourceKey      string       `json:"source_key"`
	FileName       string       `json:"file_name"`
	MimeType       string       `json:"mime_type"`
	DocumentType   DocumentType `json:"document_type"`
	ExtractedText  string       `json:"extracted_text"`
	PageCount      int          `json:"page_count"`
}

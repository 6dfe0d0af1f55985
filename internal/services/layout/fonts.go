package layout

import "strings"

// familyTable maps a normalized PDF base-font key to a client font
// family. Lookup happens after normalization instead of cascading
// substring checks so adding a family is a one-line change.
var familyTable = map[string]string{
	"times":         "Times New Roman",
	"timesroman":    "Times New Roman",
	"timesnew":      "Times New Roman",
	"timesnewroman": "Times New Roman",
	"helvetica":     "Arial",
	"arial":         "Arial",
	"courier":       "Courier New",
	"couriernew":    "Courier New",
}

// defaultFamily is used for unmapped base fonts
const defaultFamily = "Arial"

// fontStyle is the decomposed style of a PDF font name
type fontStyle struct {
	Family string
	Bold   bool
	Italic bool
}

// resolveFont decomposes a raw PDF font name (e.g. "ABCDEF+Times-BoldItalic")
// into a client family plus style flags.
func resolveFont(rawName string) fontStyle {
	name := rawName

	// Strip subset prefix ("ABCDEF+")
	if idx := strings.Index(name, "+"); idx >= 0 && idx == 6 {
		name = name[idx+1:]
	}

	lower := strings.ToLower(name)
	style := fontStyle{
		Bold:   strings.Contains(lower, "bold"),
		Italic: strings.Contains(lower, "italic") || strings.Contains(lower, "oblique"),
	}

	// Normalize: drop style suffixes and separators, keep the base key
	base := lower
	for _, sep := range []string{"-", "_", ",", " "} {
		base = strings.ReplaceAll(base, sep, "")
	}
	// Longer suffixes first so "psmt" is not eaten by "mt"
	for _, suffix := range []string{"bolditalic", "boldoblique", "bold", "italic", "oblique", "regular", "psmt", "mt"} {
		base = strings.ReplaceAll(base, suffix, "")
	}

	if family, ok := familyTable[base]; ok {
		style.Family = family
	} else {
		style.Family = defaultFamily
	}

	return style
}

package reconstruct

import "strings"

// pdfFont resolves a captured font family plus bold/italic flags to a
// core font name and style string. Only the three core families are
// embeddable without font files; everything else draws as Helvetica.
func pdfFont(family string, bold, italic bool) (name, style string) {
	lower := strings.ToLower(family)
	switch {
	case strings.Contains(lower, "times"):
		name = "Times"
	case strings.Contains(lower, "courier"):
		name = "Courier"
	default:
		name = "Helvetica"
	}

	if bold {
		style += "B"
	}
	if italic {
		style += "I"
	}
	return name, style
}

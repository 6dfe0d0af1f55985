package reconstruct

import "github.com/ternarybob/docforge/internal/services/layout"

// drawGeometry is an element's position in page points, derived from
// coordinates the editor captured at the raster scale.
type drawGeometry struct {
	X        float64
	Baseline float64 // bottom-origin baseline position
	FontSize float64
}

// elementGeometry halves captured coordinates back into page points.
// The baseline lands at pageHeight - y/scale - fontSize so text drawn
// at the transformed position overlays the original glyphs.
func elementGeometry(x, y, fontSize, pageHeight float64) drawGeometry {
	fs := fontSize / layout.CaptureScale
	return drawGeometry{
		X:        x / layout.CaptureScale,
		FontSize: fs,
		Baseline: pageHeight - y/layout.CaptureScale - fs,
	}
}

// yTop converts the bottom-origin baseline into the top-origin position
// the drawing layer expects.
func (g drawGeometry) yTop(pageHeight float64) float64 {
	return pageHeight - g.Baseline
}

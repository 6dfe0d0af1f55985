package layout

import "github.com/ternarybob/docforge/internal/models"

// Merge tolerances. A run joins the open block only when every gate
// holds; the first failing gate closes the block. The pass is greedy,
// left to right, single scan, in source run order.
const (
	baselineTolerance = 0.15 // vertical centers differ by <15% of font size
	leftSlack         = 5.0  // run may start slightly left of the block's right edge
	gapFactor         = 0.8  // max gap as a fraction of font size
	sizeTolerance     = 2.0  // font size match window in pt
	spaceGapFactor    = 0.15 // gaps wider than this fraction of font size get a space
)

// run is one positioned glyph run in capture units (top-left origin)
type run struct {
	Text     string
	Page     int
	X        float64
	Y        float64
	Width    float64
	FontSize float64
	Family   string
	Bold     bool
	Italic   bool
}

// openBlock is the accumulator for the greedy merge
type openBlock struct {
	text     string
	page     int
	x        float64
	y        float64
	right    float64
	height   float64
	fontSize float64
	family   string
	bold     bool
	italic   bool
}

func (b *openBlock) toBlock() models.TextBlock {
	return models.TextBlock{
		Text:       b.text,
		Page:       b.page,
		X:          b.x,
		Y:          b.y,
		Width:      b.right - b.x,
		Height:     b.height,
		FontFamily: b.family,
		FontSizePt: b.fontSize,
		IsBold:     b.bold,
		IsItalic:   b.italic,
	}
}

func (b *openBlock) vCenter() float64 {
	return b.y + b.height/2
}

// accepts reports whether r extends the open block
func (b *openBlock) accepts(r run) bool {
	if r.Family != b.family || r.Bold != b.bold || r.Italic != b.italic {
		return false
	}
	if diff := r.FontSize - b.fontSize; diff > sizeTolerance || diff < -sizeTolerance {
		return false
	}

	runCenter := r.Y + r.FontSize/2
	centerDiff := runCenter - b.vCenter()
	if centerDiff < 0 {
		centerDiff = -centerDiff
	}
	if centerDiff >= baselineTolerance*b.fontSize {
		return false
	}

	return r.X >= b.right-leftSlack && r.X <= b.right+gapFactor*b.fontSize
}

// absorb appends r to the open block, inserting a space for word gaps
func (b *openBlock) absorb(r run) {
	if r.X-b.right > spaceGapFactor*b.fontSize {
		b.text += " "
	}
	b.text += r.Text

	if right := r.X + r.Width; right > b.right {
		b.right = right
	}
	if r.Y < b.y {
		b.y = r.Y
	}
	if bottom := r.Y + r.FontSize; bottom > b.y+b.height {
		b.height = bottom - b.y
	}
}

// mergeRuns folds runs into logical blocks with an explicit accumulator.
// Blocks are emitted in source run order; ties and overlaps are never
// re-ordered.
func mergeRuns(runs []run) []models.TextBlock {
	blocks := make([]models.TextBlock, 0, len(runs))
	var current *openBlock

	for i := 0; i < len(runs); i++ {
		r := runs[i]
		if r.Text == "" {
			continue
		}

		if current != nil && current.accepts(r) {
			current.absorb(r)
			continue
		}

		if current != nil {
			blocks = append(blocks, current.toBlock())
		}
		current = &openBlock{
			text:     r.Text,
			page:     r.Page,
			x:        r.X,
			y:        r.Y,
			right:    r.X + r.Width,
			height:   r.FontSize,
			fontSize: r.FontSize,
			family:   r.Family,
			bold:     r.Bold,
			italic:   r.Italic,
		}
	}

	if current != nil {
		blocks = append(blocks, current.toBlock())
	}

	return blocks
}

package align

import (
	"math"

	"github.com/gridsnap/gridsnap/pkg/board"
	"github.com/gridsnap/gridsnap/pkg/errors"
)

// SizeMode selects the optional uniform resize applied before layout.
type SizeMode string

const (
	// SizeNone leaves item sizes untouched.
	SizeNone SizeMode = "none"

	// SizeMatchWidth sets every width to the minimum width among the
	// items, scaling each height proportionally to preserve aspect ratio.
	SizeMatchWidth SizeMode = "match-width"

	// SizeMatchHeight sets every height to the minimum height among the
	// items, scaling each width proportionally.
	SizeMatchHeight SizeMode = "match-height"
)

// Anchor names the corner of the original bounding box that the grid's
// corresponding corner must coincide with.
type Anchor string

const (
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
)

// RowMode selects the cell-sizing policy.
type RowMode string

const (
	// RowUniform gives every cell the global max width and height.
	RowUniform RowMode = "uniform"

	// RowPacked sizes each row by its own contents: row height is the max
	// height in the row, items sit at a cumulative horizontal cursor.
	RowPacked RowMode = "packed"
)

// Config is the immutable input to one layout call.
type Config struct {
	Columns  int
	HGap     float64
	VGap     float64
	SizeMode SizeMode
	Anchor   Anchor
	RowMode  RowMode
}

// Validate checks enum fields and fills zero values with defaults. Columns
// below 1 is an error at this level; Layout itself clamps defensively.
func (c *Config) Validate() error {
	if c.Columns < 1 {
		return errors.New(errors.ErrCodeInvalidColumns, "columns must be >= 1, got %d", c.Columns)
	}
	if c.HGap < 0 || c.VGap < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "gaps must be >= 0")
	}
	switch c.SizeMode {
	case "":
		c.SizeMode = SizeNone
	case SizeNone, SizeMatchWidth, SizeMatchHeight:
	default:
		return errors.New(errors.ErrCodeInvalidSizeMode, "unknown size mode %q", string(c.SizeMode))
	}
	switch c.Anchor {
	case "":
		c.Anchor = AnchorTopLeft
	case AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight:
	default:
		return errors.New(errors.ErrCodeInvalidAnchor, "unknown anchor %q", string(c.Anchor))
	}
	switch c.RowMode {
	case "":
		c.RowMode = RowUniform
	case RowUniform, RowPacked:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown row mode %q", string(c.RowMode))
	}
	return nil
}

// Placement is the computed geometry for one item, preserving input-order
// correspondence with the laid-out slice.
type Placement struct {
	ID   string
	X, Y float64 // new center
	W, H float64 // final size (resized or original)
}

// Bounds is an axis-aligned bounding box, recomputed from current item
// geometry before every layout and never stored.
type Bounds struct {
	Left, Top, Right, Bottom float64
}

// BoundsOf computes the bounding box of the items' current geometry.
func BoundsOf(items []*board.Item) Bounds {
	b := Bounds{
		Left: math.Inf(1), Top: math.Inf(1),
		Right: math.Inf(-1), Bottom: math.Inf(-1),
	}
	for _, it := range items {
		b.Left = math.Min(b.Left, it.X-it.W/2)
		b.Right = math.Max(b.Right, it.X+it.W/2)
		b.Top = math.Min(b.Top, it.Y-it.H/2)
		b.Bottom = math.Max(b.Bottom, it.Y+it.H/2)
	}
	return b
}

// Resize applies the uniform resize policy to the items in place and
// returns the mutations to commit. Layout math depends on final sizes, so
// callers must commit these before computing positions.
//
// Aspect ratio is preserved: matching widths scales heights proportionally
// and vice versa. Items with a zero reference dimension keep their other
// dimension unchanged.
func Resize(items []*board.Item, mode SizeMode) []board.Mutation {
	if mode == SizeNone || mode == "" || len(items) == 0 {
		return nil
	}

	ref := math.Inf(1)
	for _, it := range items {
		switch mode {
		case SizeMatchWidth:
			ref = math.Min(ref, it.W)
		case SizeMatchHeight:
			ref = math.Min(ref, it.H)
		}
	}

	var muts []board.Mutation
	for _, it := range items {
		var newW, newH float64
		switch mode {
		case SizeMatchWidth:
			newW = ref
			newH = it.H
			if it.W > 0 {
				newH = it.H * ref / it.W
			}
		case SizeMatchHeight:
			newH = ref
			newW = it.W
			if it.H > 0 {
				newW = it.W * ref / it.H
			}
		}
		if newW == it.W && newH == it.H {
			continue
		}
		it.W, it.H = newW, newH
		w, h := newW, newH
		muts = append(muts, board.Mutation{ID: it.ID, W: &w, H: &h})
	}
	return muts
}

// Layout converts the ordered items into non-overlapping grid placements
// anchored to cfg.Anchor of the items' current bounding box. The input
// order is the grid order: index i lands in row i/columns, column i%columns.
//
// Both row modes compute top-left-relative centers first, then mirror
// across the grid's own extent for right/bottom anchors, then translate to
// the anchor origin. Uniform and packed placement therefore agree for
// equivalent inputs.
func Layout(items []*board.Item, cfg Config) []Placement {
	n := len(items)
	if n == 0 {
		return nil
	}
	cols := cfg.Columns
	if cols < 1 {
		cols = 1
	}

	bounds := BoundsOf(items)

	var rel []relCenter
	var gridW, gridH float64
	if cfg.RowMode == RowPacked {
		rel, gridW, gridH = packedCenters(items, cols, cfg.HGap, cfg.VGap)
	} else {
		rel, gridW, gridH = uniformCenters(items, cols, cfg.HGap, cfg.VGap)
	}

	mirrorX := cfg.Anchor == AnchorTopRight || cfg.Anchor == AnchorBottomRight
	mirrorY := cfg.Anchor == AnchorBottomLeft || cfg.Anchor == AnchorBottomRight

	originX := bounds.Left
	if mirrorX {
		originX = bounds.Right - gridW
	}
	originY := bounds.Top
	if mirrorY {
		originY = bounds.Bottom - gridH
	}

	placements := make([]Placement, n)
	for i, it := range items {
		cx, cy := rel[i].x, rel[i].y
		if mirrorX {
			cx = gridW - cx
		}
		if mirrorY {
			cy = gridH - cy
		}
		placements[i] = Placement{
			ID: it.ID,
			X:  originX + cx,
			Y:  originY + cy,
			W:  it.W,
			H:  it.H,
		}
	}
	return placements
}

// relCenter is an item center relative to the grid's top-left corner.
type relCenter struct{ x, y float64 }

// uniformCenters places every item centered in a cell of the global max
// width and height.
func uniformCenters(items []*board.Item, cols int, hGap, vGap float64) ([]relCenter, float64, float64) {
	n := len(items)
	rows := (n + cols - 1) / cols
	effCols := cols
	if n < cols {
		effCols = n
	}

	var cellW, cellH float64
	for _, it := range items {
		cellW = math.Max(cellW, it.W)
		cellH = math.Max(cellH, it.H)
	}

	gridW := float64(effCols)*cellW + float64(effCols-1)*hGap
	gridH := float64(rows)*cellH + float64(rows-1)*vGap

	rel := make([]relCenter, n)
	for i := range items {
		row := i / cols
		col := i % cols
		rel[i] = relCenter{
			x: float64(col)*(cellW+hGap) + cellW/2,
			y: float64(row)*(cellH+vGap) + cellH/2,
		}
	}
	return rel, gridW, gridH
}

// packedCenters places each item at a cumulative horizontal cursor within
// its row, vertically centered on the row's own height.
func packedCenters(items []*board.Item, cols int, hGap, vGap float64) ([]relCenter, float64, float64) {
	n := len(items)
	rows := (n + cols - 1) / cols

	rowHeights := make([]float64, rows)
	rowWidths := make([]float64, rows)
	for i, it := range items {
		row := i / cols
		rowHeights[row] = math.Max(rowHeights[row], it.H)
		rowWidths[row] += it.W
		if i%cols > 0 {
			rowWidths[row] += hGap
		}
	}

	var gridW, gridH float64
	for r := 0; r < rows; r++ {
		gridW = math.Max(gridW, rowWidths[r])
		gridH += rowHeights[r]
		if r > 0 {
			gridH += vGap
		}
	}

	rel := make([]relCenter, n)
	rowTop := 0.0
	cursor := 0.0
	for i, it := range items {
		row := i / cols
		if i > 0 && i%cols == 0 {
			rowTop += rowHeights[row-1] + vGap
			cursor = 0
		}
		rel[i] = relCenter{
			x: cursor + it.W/2,
			y: rowTop + rowHeights[row]/2,
		}
		cursor += it.W + hGap
	}
	return rel, gridW, gridH
}

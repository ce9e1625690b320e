// Package render draws planned grid layouts as PNG previews.
//
// A preview shows the target geometry without touching the board: each item
// is drawn as a labeled box at its computed placement, with the original
// bounding box outlined behind the grid for orientation.
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/gridsnap/gridsnap/pkg/align"
	"github.com/gridsnap/gridsnap/pkg/board"
	"github.com/gridsnap/gridsnap/pkg/errors"
)

const (
	// maxPreviewEdge bounds the longer side of the output image.
	maxPreviewEdge = 1200

	// previewMargin is the pixel padding around the drawn content.
	previewMargin = 32
)

// Preview pairs ordered items with their computed placements.
type Preview struct {
	Ordered    []*board.Item
	Placements []align.Placement
	Bounds     align.Bounds // original selection bounds, drawn as a frame
}

// Image rasterizes the preview.
func (p *Preview) Image() (image.Image, error) {
	if len(p.Placements) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySelection, "nothing to preview")
	}

	left, top, right, bottom := p.extent()
	worldW := right - left
	worldH := bottom - top
	if worldW <= 0 || worldH <= 0 {
		return nil, errors.New(errors.ErrCodeInternal, "degenerate preview extent")
	}

	scale := float64(maxPreviewEdge-2*previewMargin) / math.Max(worldW, worldH)
	w := int(worldW*scale) + 2*previewMargin
	h := int(worldH*scale) + 2*previewMargin

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	toX := func(x float64) float64 { return (x-left)*scale + previewMargin }
	toY := func(y float64) float64 { return (y-top)*scale + previewMargin }

	// Original bounds as a dashed frame.
	dc.SetRGB(0.7, 0.7, 0.7)
	dc.SetDash(6, 4)
	dc.SetLineWidth(1)
	dc.DrawRectangle(toX(p.Bounds.Left), toY(p.Bounds.Top),
		(p.Bounds.Right-p.Bounds.Left)*scale, (p.Bounds.Bottom-p.Bounds.Top)*scale)
	dc.Stroke()
	dc.SetDash()

	for i, pl := range p.Placements {
		x := toX(pl.X - pl.W/2)
		y := toY(pl.Y - pl.H/2)
		bw := pl.W * scale
		bh := pl.H * scale

		dc.SetRGB(0.88, 0.92, 0.98)
		dc.DrawRectangle(x, y, bw, bh)
		dc.FillPreserve()
		dc.SetRGB(0.25, 0.35, 0.55)
		dc.SetLineWidth(1.5)
		dc.Stroke()

		label := fmt.Sprintf("%d", i+1)
		if i < len(p.Ordered) && p.Ordered[i].Title != "" {
			label = fmt.Sprintf("%d  %s", i+1, p.Ordered[i].Title)
		}
		dc.SetRGB(0.1, 0.1, 0.2)
		dc.DrawStringAnchored(label, toX(pl.X), toY(pl.Y), 0.5, 0.5)
	}

	return dc.Image(), nil
}

// WritePNG rasterizes the preview and writes it to path.
func (p *Preview) WritePNG(path string) error {
	img, err := p.Image()
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// extent returns the world rectangle covering both the placements and the
// original bounds.
func (p *Preview) extent() (left, top, right, bottom float64) {
	left, top = p.Bounds.Left, p.Bounds.Top
	right, bottom = p.Bounds.Right, p.Bounds.Bottom
	for _, pl := range p.Placements {
		left = math.Min(left, pl.X-pl.W/2)
		right = math.Max(right, pl.X+pl.W/2)
		top = math.Min(top, pl.Y-pl.H/2)
		bottom = math.Max(bottom, pl.Y+pl.H/2)
	}
	return left, top, right, bottom
}

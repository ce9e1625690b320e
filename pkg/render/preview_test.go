package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gridsnap/gridsnap/pkg/align"
	"github.com/gridsnap/gridsnap/pkg/board"
	"github.com/gridsnap/gridsnap/pkg/errors"
)

func samplePreview() *Preview {
	items := []*board.Item{
		{ID: "a", Title: "a_1", X: 60, Y: 40, W: 100, H: 80},
		{ID: "b", Title: "a_2", X: 400, Y: 300, W: 100, H: 80},
	}
	bounds := align.BoundsOf(items)
	placements := align.Layout(items, align.Config{Columns: 2, HGap: 10})
	return &Preview{Ordered: items, Placements: placements, Bounds: bounds}
}

func TestPreviewImage(t *testing.T) {
	img, err := samplePreview().Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		t.Errorf("empty image: %v", b)
	}
	if b.Dx() > 1200 || b.Dy() > 1200 {
		t.Errorf("image exceeds edge bound: %v", b)
	}
}

func TestPreviewWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	if err := samplePreview().WritePNG(path); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("output is not a valid PNG: %v", err)
	}
}

func TestPreviewEmpty(t *testing.T) {
	p := &Preview{}
	_, err := p.Image()
	if errors.GetCode(err) != errors.ErrCodeEmptySelection {
		t.Errorf("code = %v, want EMPTY_SELECTION", errors.GetCode(err))
	}
}

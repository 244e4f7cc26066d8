//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/entity"
)

func canvas(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, 255
	}
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func TestAlign_BlankCanvasesReturnCandidate(t *testing.T) {
	a := NewAligner(analysis.DefaultParams().Alignment, 1)
	ref := entity.NewImage(canvas(320, 240, color.RGBA{R: 255, G: 255, B: 255}))
	cand := entity.NewImage(canvas(320, 240, color.RGBA{R: 128, G: 128, B: 128}))

	out, ok := a.Align(context.Background(), ref, cand)

	require.False(t, ok)
	require.Equal(t, cand, out)
}

func TestExtract_IdenticalImages(t *testing.T) {
	d := NewChangeDetector(analysis.DefaultParams().Difference)
	base := canvas(200, 200, color.RGBA{R: 90, G: 90, B: 90})
	fillRect(base, image.Rect(20, 20, 60, 60), color.RGBA{R: 200, G: 200, B: 200})
	img := entity.NewImage(base)

	cm, err := d.Extract(context.Background(), img, img)

	require.NoError(t, err)
	require.Empty(t, cm.Regions)
	require.InDelta(t, 1.0, cm.StructuralScore, 1e-3)
	require.Zero(t, cm.Mask.ChangedRatio())
}

func TestExtract_FindsChangedPatch(t *testing.T) {
	d := NewChangeDetector(analysis.DefaultParams().Difference)
	before := canvas(300, 300, color.RGBA{R: 120, G: 120, B: 120})
	after := canvas(300, 300, color.RGBA{R: 120, G: 120, B: 120})
	fillRect(after, image.Rect(100, 100, 180, 180), color.RGBA{R: 250, G: 250, B: 250})

	cm, err := d.Extract(context.Background(), entity.NewImage(before), entity.NewImage(after))

	require.NoError(t, err)
	require.NotEmpty(t, cm.Regions)
	r := cm.Regions[0]
	require.LessOrEqual(t, r.Box.X1, 100)
	require.GreaterOrEqual(t, r.Box.X2, 180)
	require.Less(t, cm.StructuralScore, 1.0)
}

func TestHighlight_ProducesJPEG(t *testing.T) {
	img := entity.NewImage(canvas(100, 80, color.RGBA{R: 10, G: 10, B: 10}))
	defects := []entity.DefectCandidate{
		{Region: entity.Region{Box: entity.Box{X1: 10, Y1: 10, X2: 50, Y2: 40}}, Best: entity.Verdict{IsRepair: true, Confidence: 0.8}},
	}

	out, err := NewHighlighter().Highlight(img, defects)

	require.NoError(t, err)
	_, err = entity.DecodeImage(out)
	require.NoError(t, err)
}

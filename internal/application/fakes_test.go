package app

import (
	"context"
	"image"
	"image/color"
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"repair-bot/internal/domain/entity"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var (
	bright = color.RGBA{R: 210, G: 210, B: 210, A: 255}
	dark   = color.RGBA{R: 40, G: 30, B: 20, A: 255}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func paint(img *image.RGBA, r image.Rectangle, c color.RGBA) *image.RGBA {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func img(src *image.RGBA) entity.Image { return entity.NewImage(src) }

func meanRed(i entity.Image) float64 {
	var sum float64
	for y := 0; y < i.Height(); y++ {
		for x := 0; x < i.Width(); x++ {
			sum += float64(i.RGBAAt(x, y).R)
		}
	}
	return sum / i.Area()
}

func box(x1, y1, x2, y2 int) entity.Region {
	b := entity.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
	return entity.Region{Box: b, Area: float64(b.Area()), Kind: entity.RegionChanged}
}

// identityAligner считает любого кандидата совмещённым.
type identityAligner struct{}

func (identityAligner) Align(_ context.Context, _, candidate entity.Image) (entity.Image, bool) {
	return candidate, true
}

type fakeDetector struct {
	result entity.ChangeMap
	err    error
	calls  atomic.Int32
}

func (d *fakeDetector) Extract(_ context.Context, _, _ entity.Image) (entity.ChangeMap, error) {
	d.calls.Add(1)
	return d.result, d.err
}

// brightnessMeter считает фрагмент отремонтированным, если "после" светлый.
type brightnessMeter struct{}

func (brightnessMeter) Measure(_, after entity.Image) entity.IndicatorSet {
	if meanRed(after) > 128 {
		return entity.IndicatorSet{RustReduction: 20, BrightnessIncrease: 20}
	}
	return entity.IndicatorSet{}
}

type fakeEmbedder struct {
	embed func(ctx context.Context, img entity.Image) ([]float32, error)
}

func (e fakeEmbedder) Embed(ctx context.Context, img entity.Image) ([]float32, error) {
	return e.embed(ctx, img)
}

type fakeJudge struct {
	judge func(ctx context.Context, before, after entity.Image) (string, error)
}

func (j fakeJudge) Judge(ctx context.Context, before, after entity.Image, _ entity.IndicatorSet) (string, error) {
	return j.judge(ctx, before, after)
}

type fakeProposer struct {
	proposals []entity.Proposal
	err       error
}

func (p fakeProposer) Propose(_ context.Context, _, _ entity.Image) ([]entity.Proposal, error) {
	return p.proposals, p.err
}

// blockUntilDone ждёт отмены контекста.
func blockUntilDone(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

package entity

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestNewImage_CopiesSource(t *testing.T) {
	src := solid(4, 3, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img := NewImage(src)

	src.SetRGBA(0, 0, color.RGBA{A: 255})
	require.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, img.RGBAAt(0, 0))
	require.Equal(t, 4, img.Width())
	require.Equal(t, 3, img.Height())
}

func TestImageCrop(t *testing.T) {
	img := NewImage(solid(100, 50, color.RGBA{R: 200, A: 255}))

	sub, ok := img.Crop(Box{X1: 90, Y1: 40, X2: 130, Y2: 70})
	require.True(t, ok)
	require.Equal(t, 10, sub.Width())
	require.Equal(t, 10, sub.Height())

	_, ok = img.Crop(Box{X1: 120, Y1: 0, X2: 130, Y2: 10})
	require.False(t, ok)
}

func TestImageResizeAndFit(t *testing.T) {
	img := NewImage(solid(800, 400, color.RGBA{G: 255, A: 255}))

	r := img.Resize(80, 40)
	require.Equal(t, 80, r.Width())
	require.Equal(t, 40, r.Height())

	f := img.FitWithin(512)
	require.Equal(t, 512, f.Width())
	require.Equal(t, 256, f.Height())

	require.Equal(t, img, img.FitWithin(1024))
}

func TestDecodeImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(5, 5, color.RGBA{B: 255, A: 255})))

	img, err := DecodeImage(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, 5, img.Width())

	_, err = DecodeImage(nil)
	require.ErrorIs(t, err, ErrEmptyImage)

	_, err = DecodeImage([]byte("not an image"))
	require.Error(t, err)
}

func TestMaskChangedRatio(t *testing.T) {
	m := Mask{Gray: image.NewGray(image.Rect(0, 0, 4, 1))}
	m.Pix[0] = 255
	require.InDelta(t, 0.25, m.ChangedRatio(), 1e-9)
	require.Zero(t, Mask{}.ChangedRatio())
}

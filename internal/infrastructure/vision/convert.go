//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"repair-bot/internal/domain/entity"
)

// toBGR переводит изображение в трёхканальный Mat OpenCV.
func toBGR(img entity.Image) (gocv.Mat, error) {
	if img.Empty() {
		return gocv.NewMat(), entity.ErrEmptyImage
	}
	rgba := img.RGBA()
	src, err := gocv.NewMatFromBytes(img.Height(), img.Width(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("mat from bytes: %w", err)
	}
	defer src.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(src, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}

// toGray переводит изображение в одноканальный Mat.
func toGray(img entity.Image) (gocv.Mat, error) {
	bgr, err := toBGR(img)
	if err != nil {
		return bgr, err
	}
	defer bgr.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)
	return gray, nil
}

// fromMat копирует Mat в новое изображение.
func fromMat(m gocv.Mat) (entity.Image, error) {
	if m.Empty() {
		return entity.Image{}, entity.ErrEmptyImage
	}
	img, err := m.ToImage()
	if err != nil {
		return entity.Image{}, fmt.Errorf("mat to image: %w", err)
	}
	return entity.NewImage(img), nil
}

// grayMask копирует бинарный Mat в маску.
func grayMask(m gocv.Mat) entity.Mask {
	out := image.NewGray(image.Rect(0, 0, m.Cols(), m.Rows()))
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			out.Pix[y*out.Stride+x] = m.GetUCharAt(y, x)
		}
	}
	return entity.Mask{Gray: out}
}

//go:build gocv
// +build gocv

package colorimetry

import (
	"gocv.io/x/gocv"

	"repair-bot/internal/domain/entity"
)

// edgeDensity доля пикселей, отмеченных детектором Канни.
func edgeDensity(img entity.Image, low, high float64) float64 {
	if img.Empty() {
		return 0
	}
	src, err := gocv.NewMatFromBytes(img.Height(), img.Width(), gocv.MatTypeCV8UC4, img.RGBA().Pix)
	if err != nil {
		return 0
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, float32(low), float32(high))

	return float64(gocv.CountNonZero(edges)) / img.Area()
}

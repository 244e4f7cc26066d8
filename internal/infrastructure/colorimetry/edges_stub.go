//go:build !gocv
// +build !gocv

package colorimetry

import "repair-bot/internal/domain/entity"

// edgeDensity без OpenCV не считается: признак EdgeReduction остаётся нулевым.
func edgeDensity(entity.Image, float64, float64) float64 {
	return 0
}

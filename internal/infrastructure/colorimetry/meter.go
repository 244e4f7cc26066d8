// Package colorimetry считает цветовые и текстурные признаки ремонта.
// Плотность границ требует OpenCV (тег gocv), остальные признаки считаются на Go.
package colorimetry

import (
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"

	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

// Meter измеряет признаки по паре фрагментов "до" и "после".
type Meter struct {
	params analysis.IndicatorParams
}

func NewMeter(params analysis.IndicatorParams) *Meter {
	return &Meter{params: params}
}

// surfaceStats статистика одного фрагмента.
type surfaceStats struct {
	rustPercent float64
	meanL       float64
	stdL        float64
	edgeDensity float64
}

// Measure считает четыре базовых признака. Нейросетевые признаки не заполняются.
func (m *Meter) Measure(before, after entity.Image) entity.IndicatorSet {
	set := entity.IndicatorSet{
		FeatureDistance:      entity.Unavailable,
		PerceptualSimilarity: entity.Unavailable,
	}
	if before.Empty() || after.Empty() {
		return set
	}

	b := m.stats(before)
	a := m.stats(after)

	set.RustReduction = b.rustPercent - a.rustPercent
	set.BrightnessIncrease = a.meanL - b.meanL
	set.UniformityImprovement = b.stdL - a.stdL
	set.EdgeReduction = b.edgeDensity - a.edgeDensity
	return set
}

func (m *Meter) stats(img entity.Image) surfaceStats {
	w, h := img.Width(), img.Height()
	lightness := make([]float64, 0, w*h)
	rust := 0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := img.RGBAAt(x, y)
			c := colorful.Color{
				R: float64(px.R) / 255,
				G: float64(px.G) / 255,
				B: float64(px.B) / 255,
			}
			if m.isRust(c) {
				rust++
			}
			l, _, _ := c.Lab()
			// Шкала L как у 8-битного Lab OpenCV.
			lightness = append(lightness, clamp(l, 0, 1)*255)
		}
	}

	mean, std := stat.PopMeanStdDev(lightness, nil)
	return surfaceStats{
		rustPercent: float64(rust) / float64(w*h) * 100,
		meanL:       mean,
		stdL:        std,
		edgeDensity: edgeDensity(img, m.params.EdgeLow, m.params.EdgeHigh),
	}
}

// isRust проверяет попадание в коричнево-оранжевый диапазон HSV.
func (m *Meter) isRust(c colorful.Color) bool {
	hue, sat, val := c.Hsv()
	hue /= 2 // градусы -> единицы OpenCV 0..179
	sat *= 255
	val *= 255
	return hue <= m.params.RustHueMax &&
		sat >= m.params.RustSatMin &&
		val >= m.params.RustValMin && val <= m.params.RustValMax
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ port.SurfaceMeter = (*Meter)(nil)

package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

var errDimensionMismatch = errors.New("embedding dimensions differ")

// FeatureDistance евклидово расстояние между эмбеддингами.
func FeatureDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, errDimensionMismatch
	}
	return floats.Distance(toFloat64(a), toFloat64(b), 2), nil
}

// CosineSimilarity косинусная близость, отрицательные значения обрезаются до 0.
// Для нулевого вектора близость 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, errDimensionMismatch
	}
	x, y := toFloat64(a), toFloat64(b)
	na, nb := floats.Norm(x, 2), floats.Norm(y, 2)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	cos := floats.Dot(x, y) / (na * nb)
	return math.Max(0, math.Min(1, cos)), nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// Package vision реализует совмещение, поиск отличий и подсветку на OpenCV.
// Без тега сборки gocv доступны только заглушки.
package vision

import (
	"image/color"

	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/port"
)

// Aligner совмещает снимки по ключевым точкам ORB и гомографии.
type Aligner struct {
	params analysis.AlignmentParams
	seed   uint64
}

// NewAligner создаёт совмещатель. seed фиксирует выборки RANSAC.
func NewAligner(params analysis.AlignmentParams, seed uint64) *Aligner {
	return &Aligner{params: params, seed: seed}
}

// ChangeDetector ищет отличия по карте структурного сходства.
type ChangeDetector struct {
	params analysis.DifferenceParams
}

func NewChangeDetector(params analysis.DifferenceParams) *ChangeDetector {
	return &ChangeDetector{params: params}
}

// Highlighter рисует рамки: зелёные для отремонтированных областей, красные для остальных.
type Highlighter struct {
	Thickness int
	Quality   int
}

func NewHighlighter() *Highlighter {
	return &Highlighter{Thickness: 3, Quality: 90}
}

var (
	colorRepaired    = color.RGBA{G: 200, A: 255}
	colorNotRepaired = color.RGBA{R: 230, A: 255}
)

var (
	_ port.Aligner        = (*Aligner)(nil)
	_ port.ChangeDetector = (*ChangeDetector)(nil)
	_ port.Highlighter    = (*Highlighter)(nil)
)

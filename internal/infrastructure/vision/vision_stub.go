//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

// Align без OpenCV не совмещает: кандидат возвращается как есть.
func (a *Aligner) Align(ctx context.Context, reference, candidate entity.Image) (entity.Image, bool) {
	_ = ctx
	_ = reference
	return candidate, false
}

// Extract возвращает ошибку, если сборка без тега gocv.
func (d *ChangeDetector) Extract(ctx context.Context, before, after entity.Image) (entity.ChangeMap, error) {
	_ = ctx
	_ = before
	_ = after
	return entity.ChangeMap{}, entity.ErrVisionDisabled
}

// Highlight возвращает ошибку, если сборка без тега gocv.
func (h *Highlighter) Highlight(img entity.Image, defects []entity.DefectCandidate) ([]byte, error) {
	_ = img
	_ = defects
	return nil, entity.ErrVisionDisabled
}

// DNNEmbedder заглушка экстрактора (без OpenCV).
type DNNEmbedder struct {
	name string
}

// NewDNNEmbedder возвращает ошибку, если сборка без тега gocv.
func NewDNNEmbedder(modelPath, name string) (*DNNEmbedder, error) {
	_ = modelPath
	_ = name
	return nil, entity.ErrVisionDisabled
}

func (e *DNNEmbedder) Name() string { return e.name }

// Embed возвращает ошибку, если сборка без тега gocv.
func (e *DNNEmbedder) Embed(ctx context.Context, img entity.Image) ([]float32, error) {
	_ = ctx
	_ = img
	return nil, entity.ErrVisionDisabled
}

func (e *DNNEmbedder) Close() error { return nil }

var _ port.FeatureExtractor = (*DNNEmbedder)(nil)

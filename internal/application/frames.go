package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

// FrameFilter отбирает кадры последовательности, похожие на опорный снимок.
type FrameFilter struct {
	embedder  port.FeatureExtractor
	threshold float64
	timeout   time.Duration
	log       logrus.FieldLogger
}

func NewFrameFilter(embedder port.FeatureExtractor, threshold float64, timeout time.Duration, log logrus.FieldLogger) *FrameFilter {
	return &FrameFilter{embedder: embedder, threshold: threshold, timeout: timeout, log: log}
}

// Filter возвращает индексы кадров с близостью не ниже порога. Если таких нет
// или близость посчитать нельзя, возвращаются все кадры. Кадр, для которого
// эмбеддинг не получен, считается подходящим.
func (f *FrameFilter) Filter(ctx context.Context, reference entity.Image, frames []entity.Image) []int {
	all := make([]int, len(frames))
	for i := range frames {
		all[i] = i
	}
	if f.embedder == nil || len(frames) == 0 {
		return all
	}

	embed := func(img entity.Image) ([]float32, error) {
		return withTimeout(ctx, f.timeout, func(ctx context.Context) ([]float32, error) {
			return f.embedder.Embed(ctx, img)
		})
	}

	ref, err := embed(reference)
	if err != nil {
		f.log.WithError(err).Warn("frame filter disabled: reference embedding failed")
		return all
	}

	var kept []int
	for i, frame := range frames {
		vec, err := embed(frame)
		if err != nil {
			f.log.WithError(err).WithField("frame", i).Debug("frame embedding failed, keeping frame")
			kept = append(kept, i)
			continue
		}
		sim, err := analysis.CosineSimilarity(ref, vec)
		if err != nil {
			kept = append(kept, i)
			continue
		}
		if sim >= f.threshold {
			kept = append(kept, i)
		}
	}

	if len(kept) == 0 {
		f.log.WithField("frames", len(frames)).Info("no relevant frames, using all of them")
		return all
	}
	return kept
}

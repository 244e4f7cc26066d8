package app

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

// RepairScorer считает признаки пары фрагментов и эвристическое решение.
type RepairScorer struct {
	meter      port.SurfaceMeter
	feature    port.FeatureExtractor
	perceptual port.FeatureExtractor
	params     analysis.Params
	log        logrus.FieldLogger
}

// NewRepairScorer создаёт оценщик. Экстракторы могут быть nil, тогда
// соответствующие признаки помечаются недоступными.
func NewRepairScorer(meter port.SurfaceMeter, feature, perceptual port.FeatureExtractor, params analysis.Params, log logrus.FieldLogger) *RepairScorer {
	return &RepairScorer{
		meter:      meter,
		feature:    feature,
		perceptual: perceptual,
		params:     params,
		log:        log,
	}
}

func (s *RepairScorer) Score(ctx context.Context, before, after entity.Image) (entity.IndicatorSet, entity.Verdict) {
	ind := s.meter.Measure(before, after)
	ind.FeatureDistance = s.embedSignal(ctx, s.feature, before, after, analysis.FeatureDistance)
	ind.PerceptualSimilarity = s.embedSignal(ctx, s.perceptual, before, after, analysis.CosineSimilarity)
	return ind, analysis.Score(ind, s.params.Scoring)
}

func (s *RepairScorer) embedSignal(
	ctx context.Context,
	extractor port.FeatureExtractor,
	before, after entity.Image,
	measure func(a, b []float32) (float64, error),
) entity.Signal {
	if extractor == nil {
		return entity.Unavailable
	}

	embed := func(img entity.Image) ([]float32, error) {
		return withTimeout(ctx, s.params.ExternalTimeout, func(ctx context.Context) ([]float32, error) {
			return extractor.Embed(ctx, img)
		})
	}

	a, err := embed(before)
	if err != nil {
		s.log.WithError(err).Debug("embedding unavailable")
		return entity.Unavailable
	}
	b, err := embed(after)
	if err != nil {
		s.log.WithError(err).Debug("embedding unavailable")
		return entity.Unavailable
	}

	v, err := measure(a, b)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		s.log.WithError(err).Debug("embedding comparison failed")
		return entity.Unavailable
	}
	return entity.Measured(v)
}

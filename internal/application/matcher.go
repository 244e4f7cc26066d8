package app

import (
	"context"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/entity"
)

// View кандидат "после", приведённый к координатам опорного снимка.
type View struct {
	Index   int
	Image   entity.Image
	Aligned bool
}

// CandidateMatcher ищет лучшего кандидата для одной области.
type CandidateMatcher struct {
	scorer *RepairScorer
	fuser  *DecisionFuser
	log    logrus.FieldLogger
}

func NewCandidateMatcher(scorer *RepairScorer, fuser *DecisionFuser, log logrus.FieldLogger) *CandidateMatcher {
	return &CandidateMatcher{scorer: scorer, fuser: fuser, log: log}
}

// BestMatch оценивает область на каждом кандидате параллельно и выбирает лучший
// результат. false, если ни один кандидат не дал непустого фрагмента.
// Отмена контекста возвращает ошибку контекста.
func (m *CandidateMatcher) BestMatch(ctx context.Context, reference entity.Image, region entity.Region, views []View) (analysis.CandidateOutcome, bool, error) {
	before, ok := reference.Crop(region.Box)
	if !ok {
		return analysis.CandidateOutcome{}, false, nil
	}

	outcomes := make([]*analysis.CandidateOutcome, len(views))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, view := range views {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			after, ok := view.Image.Crop(region.Box)
			if !ok {
				return nil
			}

			ind, heuristic := m.scorer.Score(gctx, before, after)
			final, semantic := m.fuser.Decide(gctx, before, after, ind, heuristic)

			m.log.WithFields(logrus.Fields{
				"region":     region.Box,
				"candidate":  view.Index,
				"score":      heuristic.Score,
				"confidence": final.Confidence,
				"repair":     final.IsRepair,
			}).Debug("candidate evaluated")

			outcomes[i] = &analysis.CandidateOutcome{
				Index:      view.Index,
				Verdict:    final,
				Heuristic:  heuristic,
				Indicators: ind,
				Semantic:   semantic,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return analysis.CandidateOutcome{}, false, err
	}
	// Внешние вызовы гасят отмену сами, поэтому проверяем ещё раз.
	if err := ctx.Err(); err != nil {
		return analysis.CandidateOutcome{}, false, err
	}

	evaluated := make([]analysis.CandidateOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o != nil {
			evaluated = append(evaluated, *o)
		}
	}
	best, found := analysis.SelectBest(evaluated)
	return best, found, nil
}

package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"repair-bot/internal/domain/analysis"
	"repair-bot/internal/domain/entity"
	"repair-bot/internal/domain/port"
)

// DecisionFuser запрашивает внешний вердикт и объединяет его с эвристикой.
type DecisionFuser struct {
	judge  port.SemanticJudge
	params analysis.Params
	log    logrus.FieldLogger
}

func NewDecisionFuser(judge port.SemanticJudge, params analysis.Params, log logrus.FieldLogger) *DecisionFuser {
	return &DecisionFuser{judge: judge, params: params, log: log}
}

// Decide возвращает итоговое решение и разобранный внешний вердикт, если он получен.
// Ошибка, таймаут или пустой ответ внешней модели означают, что вердикта нет.
func (f *DecisionFuser) Decide(ctx context.Context, before, after entity.Image, ind entity.IndicatorSet, heuristic entity.Verdict) (entity.Verdict, *entity.SemanticVerdict) {
	if f.judge == nil {
		return heuristic, nil
	}

	text, err := withTimeout(ctx, f.params.ExternalTimeout, func(ctx context.Context) (string, error) {
		return f.judge.Judge(ctx, before, after, ind)
	})
	if err != nil {
		f.log.WithError(err).Warn("semantic verdict unavailable")
		return heuristic, nil
	}

	sv, ok := analysis.ParseSemanticVerdict(text)
	if !ok {
		f.log.Warn("semantic verdict is empty")
		return heuristic, nil
	}

	external := sv.Verdict()
	return analysis.Fuse(heuristic, &external, f.params.Fusion), &sv
}

package analysis

import (
	"math"

	"repair-bot/internal/domain/entity"
)

// Score переводит признаки в балл 0..100 и предварительное решение.
// Каждый признак, превысивший свой порог, добавляет фиксированное число баллов.
// При наличии нейросетевых признаков используется профиль Deep.
func Score(ind entity.IndicatorSet, p ScoringParams) entity.Verdict {
	profile := p.Heuristic
	if ind.HasDeepFeatures() {
		profile = p.Deep
	}

	score := 0.0
	if ind.RustReduction > profile.RustThreshold {
		score += profile.RustPoints
	}
	if ind.BrightnessIncrease > profile.BrightnessThreshold {
		score += profile.BrightnessPoints
	}
	if ind.UniformityImprovement > profile.UniformityThreshold {
		score += profile.UniformityPoints
	}
	if ind.EdgeReduction > profile.EdgeThreshold {
		score += profile.EdgePoints
	}

	if d := ind.FeatureDistance; d.Available {
		if d.Value > p.FeatureDistanceLow {
			score += p.FeatureDistancePoints
		}
		if d.Value > p.FeatureDistanceHigh {
			score += p.FeatureDistancePoints
		}
	}
	// Слишком похожие области почти наверняка ложное срабатывание.
	if s := ind.PerceptualSimilarity; s.Available && s.Value > p.PerceptualPenaltyAbove {
		score -= p.PerceptualPenalty
	}

	score = math.Max(0, math.Min(score, 100))

	return entity.Verdict{
		IsRepair:   score > profile.RepairThreshold,
		Confidence: score / 100,
		Score:      score,
		Source:     entity.SourceHeuristic,
	}
}

package analysis

import "repair-bot/internal/domain/entity"

// Fuse объединяет эвристическое решение с внешним.
//
// Без внешнего вердикта возвращается эвристика. Уверенный внешний вердикт
// (Confidence > OverrideConfidence) заменяет эвристику целиком. Неуверенный
// отрицательный вердикт только снижает уверенность, не меняя решения.
func Fuse(heuristic entity.Verdict, external *entity.Verdict, p FusionParams) entity.Verdict {
	if external == nil {
		return heuristic
	}
	if external.Confidence > p.OverrideConfidence {
		return *external
	}
	if !external.IsRepair {
		fused := heuristic
		fused.Confidence = heuristic.Confidence * p.DoubtPenalty
		fused.Source = entity.SourceFused
		return fused
	}
	return heuristic
}

package analysis

import "repair-bot/internal/domain/entity"

// CandidateOutcome результат сравнения области с одним кандидатом "после".
type CandidateOutcome struct {
	Index      int
	Verdict    entity.Verdict
	Heuristic  entity.Verdict
	Indicators entity.IndicatorSet
	Semantic   *entity.SemanticVerdict
}

// SelectBest выбирает лучший результат по области.
//
// Среди решений "ремонт" побеждает наибольшая уверенность. Если ремонта нет ни у
// одного кандидата, берётся кандидат с наибольшим сырым сигналом: расстояние
// эмбеддингов, когда оно измерено, иначе эвристический балл. Эти шкалы не
// сравниваются между собой: измеренное расстояние всегда старше балла.
// При равенстве побеждает меньший индекс. false, если кандидатов нет.
func SelectBest(outcomes []CandidateOutcome) (CandidateOutcome, bool) {
	var best CandidateOutcome
	found := false

	for _, o := range outcomes {
		if !o.Verdict.IsRepair {
			continue
		}
		if !found || o.Verdict.Confidence > best.Verdict.Confidence ||
			(o.Verdict.Confidence == best.Verdict.Confidence && o.Index < best.Index) {
			best, found = o, true
		}
	}
	if found {
		return best, true
	}

	for _, o := range outcomes {
		if !found || fallbackBetter(o, best) {
			best, found = o, true
		}
	}
	return best, found
}

// fallbackBetter сравнивает двух кандидатов без ремонта.
func fallbackBetter(a, b CandidateOutcome) bool {
	at, av := fallbackKey(a)
	bt, bv := fallbackKey(b)
	if at != bt {
		return at > bt
	}
	if av != bv {
		return av > bv
	}
	return a.Index < b.Index
}

func fallbackKey(o CandidateOutcome) (tier int, value float64) {
	if d := o.Indicators.FeatureDistance; d.Available {
		return 1, d.Value
	}
	return 0, o.Heuristic.Score
}

package analysis

import (
	"math"
	"strings"

	"repair-bot/internal/domain/entity"
)

var (
	strongRepairPhrases = []string{
		"repaired", "fixed", "repair visible", "clearly repaired",
		"successfully repaired", "damage removed", "improvement",
	}
	repairPhrases = []string{
		"repair", "fix", "improved", "better", "restored",
	}
	notRepairedPhrases = []string{
		"not repaired", "not fixed", "no repair", "no fix",
		"still damaged", "defect still", "same defect",
		"still visible", "remains", "unchanged",
	}
	// Изменения съёмки, а не объекта.
	capturePhrases = []string{
		"lighting", "shadow", "angle", "brightness only",
		"camera", "exposure", "just lighter", "only brighter",
	}
)

// ParseSemanticVerdict разбирает текст внешней модели по ключевым фразам.
// Второе значение false, если текст пустой и разбирать нечего.
func ParseSemanticVerdict(text string) (entity.SemanticVerdict, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return entity.SemanticVerdict{}, false
	}
	// "NOT_REPAIRED" должен совпасть с "not repaired".
	lower := strings.ReplaceAll(strings.ToLower(trimmed), "_", " ")

	strong := containsAny(lower, strongRepairPhrases)
	weak := containsAny(lower, repairPhrases)
	negative := containsAny(lower, notRepairedPhrases)
	capture := containsAny(lower, capturePhrases)

	var label entity.SemanticLabel
	var confidence float64
	switch {
	case strong && !negative && !capture:
		label, confidence = entity.LabelRepaired, 0.90
	case weak && !negative && !capture:
		label, confidence = entity.LabelRepaired, 0.75
	case negative || capture:
		label, confidence = entity.LabelNotRepaired, 0.85
	default:
		label, confidence = entity.LabelUncertain, 0.50
	}

	switch {
	case containsAny(lower, []string{"clearly", "obvious"}):
		confidence = math.Min(0.95, confidence+0.1)
	case containsAny(lower, []string{"possibly", "maybe", "uncertain"}):
		confidence = math.Max(0.4, confidence-0.2)
	}

	return entity.SemanticVerdict{
		Label:      label,
		Confidence: confidence,
		Reasoning:  trimmed,
	}, true
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

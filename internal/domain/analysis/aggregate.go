package analysis

import (
	"fmt"

	"repair-bot/internal/domain/entity"
)

// Aggregate сворачивает решения по дефектам в итоговый статус.
// Зависит только от IsRepair, не от уверенности.
func Aggregate(verdicts []entity.Verdict) entity.OverallStatus {
	if len(verdicts) == 0 {
		return entity.StatusNoDefect
	}
	fixed := CountRepaired(verdicts)
	switch {
	case fixed == len(verdicts):
		return entity.StatusFixed
	case fixed > 0:
		return entity.StatusPartial
	default:
		return entity.StatusNotFixed
	}
}

// CountRepaired считает решения с IsRepair.
func CountRepaired(verdicts []entity.Verdict) int {
	n := 0
	for _, v := range verdicts {
		if v.IsRepair {
			n++
		}
	}
	return n
}

// Summary текст для человека.
func Summary(repaired, total int) string {
	switch {
	case total == 0:
		return "No significant changes detected between images."
	case repaired == 0:
		return fmt.Sprintf("Detected %d changed region(s), but no repairs verified.", total)
	case repaired == total:
		return fmt.Sprintf("All %d detected defect(s) have been successfully repaired.", repaired)
	default:
		return fmt.Sprintf("Found %d verified repair(s) out of %d changed region(s).", repaired, total)
	}
}

// FilteredSummary текст для случая, когда изменения были, но ни одна область не прошла отбор.
func FilteredSummary(detected int) string {
	return fmt.Sprintf("Detected %d change(s), but none qualified as a defect region.", detected)
}

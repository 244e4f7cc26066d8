package telegram

import (
	"fmt"
	"strings"

	app "repair-bot/internal/application"
	"repair-bot/internal/domain/entity"
)

var statusTitles = map[entity.OverallStatus]string{
	entity.StatusFixed:    "✅ Ремонт подтверждён",
	entity.StatusPartial:  "🟡 Ремонт выполнен частично",
	entity.StatusNotFixed: "❌ Ремонт не подтверждён",
	entity.StatusNoDefect: "ℹ️ Изменений не найдено",
}

// FormatResult превращает результат проверки в текст сообщения.
func FormatResult(r *entity.AnalysisResult) string {
	var b strings.Builder

	title, ok := statusTitles[r.Status]
	if !ok {
		title = string(r.Status)
	}
	fmt.Fprintf(&b, "%s\nУверенность: %.0f%%\n", title, r.Confidence*100)

	if len(r.Defects) > 0 {
		fmt.Fprintf(&b, "\nОбластей проверено: %d, отремонтировано: %d\n", len(r.Defects), r.FixedCount)
		for i, d := range r.Defects {
			mark := "❌"
			if d.Best.IsRepair {
				mark = "✅"
			}
			fmt.Fprintf(&b, "%s #%d: %.1f%% кадра, уверенность %.0f%%, лучшее фото «после» №%d\n",
				mark, i+1, d.AreaPercent, d.Best.Confidence*100, d.BestCandidate+1)
			if d.Description != "" {
				fmt.Fprintf(&b, "   %s\n", d.Description)
			}
		}
	}

	if r.SkippedRegions > 0 {
		fmt.Fprintf(&b, "\nПропущено областей: %d\n", r.SkippedRegions)
	}
	if r.Incomplete {
		b.WriteString("\n⌛ Проверка прервана по времени, часть областей не оценена.\n")
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "⚠️ %s\n", w)
	}

	fmt.Fprintf(&b, "\n%s", r.Summary)
	return b.String()
}

// PhotoCaption подпись к снимку с подсветкой.
func PhotoCaption(h app.HighlightedPhoto) string {
	return fmt.Sprintf("Фото «после» №%d, области фото «до» №%d", h.Candidate+1, h.Reference+1)
}

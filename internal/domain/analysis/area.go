package analysis

import (
	"sort"

	"repair-bot/internal/domain/entity"
)

// FilterByArea отбрасывает области не больше MinPercent (шум) и не меньше MaxPercent
// (глобальное изменение освещения или ошибка совмещения). Оставшиеся сортируются
// по убыванию площади и обрезаются до MaxRegions.
func FilterByArea(regions []entity.Region, imageArea float64, p AreaParams) []entity.Region {
	if imageArea <= 0 {
		return nil
	}

	kept := make([]entity.Region, 0, len(regions))
	for _, r := range regions {
		pct := r.AreaPercent(imageArea)
		if pct <= p.MinPercent || pct >= p.MaxPercent {
			continue
		}
		kept = append(kept, r)
	}

	sort.SliceStable(kept, func(a, b int) bool {
		return kept[a].Area > kept[b].Area
	})

	if p.MaxRegions > 0 && len(kept) > p.MaxRegions {
		kept = kept[:p.MaxRegions]
	}
	return kept
}
